package rules

import "github.com/roach88/watchtower/internal/model"

func directory() *Directory {
	return NewDirectory([]model.User{
		{ID: "admin1", Name: "Ada Admin", Role: model.RoleAdmin},
		{ID: "sup1", Name: "Sam Supervisor", Role: model.RoleSupervisor},
		{ID: "sup2", Name: "Sue Supervisor", Role: model.RoleSupervisor},
		{ID: "emp1", Name: "Eve Employee", Role: model.RoleEmployee, SupervisorID: "sup1"},
		{ID: "emp2", Name: "Ed Employee", Role: model.RoleEmployee, SupervisorID: "sup2"},
		{ID: "emp3", Name: "Orphan Employee", Role: model.RoleEmployee, SupervisorID: "gone"},
	})
}

var (
	adminActor      = model.Actor{ID: "admin1", Role: model.RoleAdmin}
	supActor        = model.Actor{ID: "sup1", Role: model.RoleSupervisor, CategoryIDs: []string{"billing"}}
	viewAllSup      = model.Actor{ID: "sup2", Role: model.RoleSupervisor, Permissions: []model.Capability{model.CapViewAllTickets}}
	approverSup     = model.Actor{ID: "sup1", Role: model.RoleSupervisor, Permissions: []model.Capability{model.CapApproveStaff}}
	handlerEmployee = model.Actor{ID: "emp1", Role: model.RoleEmployee, ReportsTo: "sup1", Permissions: []model.Capability{model.CapHandleTickets}, SubDepartmentIDs: []string{"sd1"}}
	plainEmployee   = model.Actor{ID: "emp2", Role: model.RoleEmployee, ReportsTo: "sup2", SubDepartmentIDs: []string{"sd2"}}
	driverActor     = model.Actor{ID: "drv1", Role: model.RoleDriver}
)

func allActors() []model.Actor {
	return []model.Actor{adminActor, supActor, viewAllSup, approverSup, handlerEmployee, plainEmployee, driverActor, {}}
}
