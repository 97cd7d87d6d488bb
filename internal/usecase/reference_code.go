package usecase

import (
	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	// ReferenceAlphabet excludes I, O, 0 and 1 so codes survive being read aloud or retyped.
	ReferenceAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	ReferenceLength   = 24

	secretAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	// SecretLength is above the 32 character floor checked at reconciliation.
	SecretLength    = 48
	MinSecretLength = 32
)

// ReferenceGenerator produces reference codes and secrets.
type ReferenceGenerator interface {
	GenerateReferenceCode() (string, error)
	GenerateReferenceSecret() (string, error)
}

// NanoIDReferenceGenerator draws from crypto/rand through go-nanoid.
type NanoIDReferenceGenerator struct{}

func NewReferenceGenerator() *NanoIDReferenceGenerator {
	return &NanoIDReferenceGenerator{}
}

func (NanoIDReferenceGenerator) GenerateReferenceCode() (string, error) {
	return gonanoid.Generate(ReferenceAlphabet, ReferenceLength)
}

func (NanoIDReferenceGenerator) GenerateReferenceSecret() (string, error) {
	return gonanoid.Generate(secretAlphabet, SecretLength)
}
