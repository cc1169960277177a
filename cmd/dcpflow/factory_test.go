package main

import (
	"errors"
	"testing"

	"dcpflow/internal/content"
)

func TestFactoryRejectsUnplayableDCP(t *testing.T) {
	factory := newDecoderFactory(48000)

	c := content.NewContent(content.KindDCP, nil)
	c.DCP = &content.DCPPart{Encrypted: true, KDMValid: false}

	_, err := factory(c)
	if !errors.Is(err, content.ErrDCPNotPlayable) {
		t.Fatalf("factory(encrypted, no valid kdm) error = %v, want wrapping ErrDCPNotPlayable", err)
	}
}

func TestFactoryAllowsPlayableDCP(t *testing.T) {
	factory := newDecoderFactory(48000)

	c := content.NewContent(content.KindDCP, nil)
	c.DCP = &content.DCPPart{Encrypted: true, KDMValid: true}

	_, err := factory(c)
	if err != nil {
		t.Fatalf("factory(encrypted, valid kdm) error = %v, want nil", err)
	}
}
