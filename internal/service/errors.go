package service

import (
	"errors"

	"minecraft-store/internal/client"
)

var (
	ErrInvalidInput     = client.ErrInvalidInput
	ErrEmptyCart        = errors.New("cart is empty")
	ErrAuthFailed       = errors.New("basket authentication failed")
	ErrPostNotFound     = errors.New("post not found")
	ErrInvalidSignature = errors.New("invalid webhook signature")
)
