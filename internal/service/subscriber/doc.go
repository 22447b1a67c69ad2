// Package subscriber implements subscription lifecycle management.
//
// The service layer contains the business rules for subscribing,
// unsubscribing, and auditing delivery outcomes. It depends on the
// Repository interface defined in this package and should never import
// from api/. Repository implementations live in repository/postgres/.
package subscriber
