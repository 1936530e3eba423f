// Package models defines domain entities for the duesync Canvas to Todoist sync.
//
// The package contains two categories of types:
//
// 1. Data Transfer Objects (DTOs): Lightweight structs representing external service data
//   - [Course] : An active enrollment from the course source, with an optional display name
//   - [Assignment] : Coursework with an optional due instant
//   - [Task] : A task in the tracker, matched to assignments by its content
//   - [NewTask] and [TaskUpdate] : Write requests sent to the tracker
//
// 2. Persistent Entities: Database-backed journal records
//   - [Run] : One execution of the sync with its counters and outcome
//   - [RunAction] : The decision taken for a single assignment during a run
//
// [Run] implements the [Model] interface. The [Repository] interface defines standard CRUD operations for database access.
package models
