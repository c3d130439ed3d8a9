package domain

import "errors"

var (
	ErrNotFound            = errors.New("not found")
	ErrInvalidAsset        = errors.New("invalid asset")
	ErrInvalidLength       = errors.New("invalid field length")
	ErrPoolUnavailable     = errors.New("amm pool unavailable")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	ErrWSDisconnect        = errors.New("websocket disconnected")
	ErrContextDone         = errors.New("context cancelled")
)
