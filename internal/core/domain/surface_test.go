package domain_test

import (
	"errors"
	"testing"

	"github.com/samirrijal/agrobot/internal/core/domain"
)

func TestDecodeClientMessage_MapClick(t *testing.T) {
	m, err := domain.DecodeClientMessage([]byte(`{"type":"mapClick","lat":14.6,"lng":120.98}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Type != domain.MsgMapClick || *m.Lat != 14.6 || *m.Lng != 120.98 {
		t.Errorf("unexpected message %+v", m)
	}
}

func TestDecodeClientMessage_Rejects(t *testing.T) {
	cases := map[string]string{
		"not json":     `{"type":`,
		"missing type": `{"lat":1,"lng":2}`,
		"unknown type": `{"type":"teleport"}`,
		"missing lng":  `{"type":"mapClick","lat":1}`,
		"string lat":   `{"type":"mapClick","lat":"1","lng":2}`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := domain.DecodeClientMessage([]byte(raw))
			if !errors.Is(err, domain.ErrInvalidMessage) {
				t.Errorf("expected ErrInvalidMessage, got %v", err)
			}
		})
	}
}

func TestDecodeClientMessage_Submit(t *testing.T) {
	m, err := domain.DecodeClientMessage([]byte(`{"type":"submitCoordinates","latText":"95","lngText":"120"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.LatText != "95" || m.LngText != "120" {
		t.Errorf("unexpected message %+v", m)
	}
}
