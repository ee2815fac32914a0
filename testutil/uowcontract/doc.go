// Package uowcontract is the behavior every unitofwork.UnitOfWork engine must show, as reusable subtests.
package uowcontract
