package models

import (
	"time"

	"github.com/google/uuid"
)

// Method — способ, которым была открыта сессия.
type Method string

const (
	MethodPassword     Method = "password"
	MethodRegistration Method = "registration"
	MethodSocial       Method = "social"
)

// Session - запись реестра о выданном токене.
type Session struct {
	ID        uuid.UUID
	Subject   string
	Method    Method
	Provider  Provider
	IssuedAt  time.Time
	ExpiresAt time.Time
	Revoked   bool
	// ParentID — идентификатор токена, из которого сессия получена через Refresh.
	ParentID uuid.UUID
}
