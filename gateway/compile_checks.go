package gateway

import "github.com/whwar9739/WhiskeyTracker/session"

var _ session.Gateway = (*Client)(nil)
