package main

import "github.com/google/uuid"

func newUUIDGen() func() string {
	return uuid.NewString
}
