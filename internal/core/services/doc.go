// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The question pipeline lives here: text normalisation, passage building,
// table retrieval, column refinement, intent classification and SQL
// synthesis, sequenced by AssistantService.
//
// Services are pure Go with no CGO.
package services
