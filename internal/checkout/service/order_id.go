package service

import "github.com/google/uuid"

const orderIDPrefix = "ORD-"

func newOrderID() string {
	return orderIDPrefix + uuid.NewString()
}
