package model

import "errors"

var (
	// Spaceship related errors
	ErrSpaceshipNotFound  = errors.New("spaceship not found")
	ErrInvalidSpaceshipID = errors.New("spaceship id cannot be negative")
	ErrValidation         = errors.New("invalid payload")

	// Notification related errors
	ErrBusClosed      = errors.New("event bus closed")
	ErrDeliveryFailed = errors.New("event delivery failed")

	// Auth related errors
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrTokenExpired       = errors.New("token expired")
)
