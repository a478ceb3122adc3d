// Package model holds the domain types shared by every watchtower package.
//
// This package contains type definitions and canonical serialization only.
// All other internal packages import model; model imports nothing internal.
//
// Key design constraints:
//   - No float types: speeds are whole km/h and fines are minor currency units
//   - All JSON tags use snake_case
//   - Snapshot equality is defined over RFC 8785 canonical JSON
package model
