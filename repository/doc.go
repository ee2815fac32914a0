// Package repository implements the seen-tracking repository pattern.
//
// A Repository stages new aggregates and loads existing ones by natural key through a per-kind storage
// collaborator. Every aggregate it hands out or accepts is remembered in a Tracker, so that the unit of work
// owning the repository can later collect the events those aggregates raised. Aggregates that were never seen
// by a repository never have their events collected.
package repository
