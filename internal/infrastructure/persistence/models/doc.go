// Package models contains the GORM persistence models. Models convert to
// and from domain types with ToDomain / FromDomain.
package models
