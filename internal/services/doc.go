// Package services defines the [CourseSource] and [TaskSink] interfaces and implements them for Canvas LMS and Todoist.
//
// # Canvas Implementation
//
// [CanvasService] reads active courses and their assignments from the Canvas REST API.
// Lists are paginated with RFC 8288 Link headers; every rel="next" page is followed.
//
// # Todoist Implementation
//
// [TodoistService] lists, creates and updates tasks with the Todoist API v1.
// Task listing is cursor paginated (next_cursor).
//
// # Authentication
//
// Both services send their API key as a bearer token through an [oauth2.StaticTokenSource]
// built by [NewBearerClient]. No token exchange or refresh takes place.
//
// # Error Handling
//
// Non-2xx responses are returned as [*APIError], which matches:
//   - [shared.ErrAPIRequest] : any failed request
//   - [shared.ErrInvalidCredentials] : 401 or 403, the API key was rejected
//   - [shared.ErrTaskNotFound] : 404
//
// Transport failures are wrapped with [shared.ErrAPIRequest] as well. Nothing is retried.
package services
