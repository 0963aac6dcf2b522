package glog

const (
	// generic error message
	LV_ERR_DETAIL = 1
	// error stack or DEBUG
	LV_ERR_STACK = 2

	LV_CONFIG   = 1 // boot
	LV_EXCHANGE = 1 // tunnel
	LV_SESSION  = 2 // session
	LV_CACHE    = 3 // session
	LV_HANDSHK  = 3 // tunnel
	LV_EAVESDRP = 3 // crypto
	LV_TABLE    = 4 // session
	LV_FRAME    = 5 // tunnel
)
