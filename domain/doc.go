// Package domain holds the bookshelf domain model: the aggregates (Author, Edition, User) with the
// Book entity, the commands that express intent and the events that record what happened.
//
// Aggregates collect the events they raise in a pending queue (see PendingEvents). Only a unit of
// work reads that queue, and reading it empties it.
package domain
