package domain

import (
	"encoding/json"
	"fmt"
)

// Inbound message types sent by the map client.
const (
	MsgMapReady          = "mapReady"
	MsgMapClick          = "mapClick"
	MsgSubmitCoordinates = "submitCoordinates"
	MsgSave              = "save"
	MsgClear             = "clear"
	MsgReload            = "reload"
)

// Outbound message types sent to the map client.
const (
	MsgAddMarker    = "addMarker"
	MsgRemoveMarker = "removeMarker"
	MsgInvalidate   = "invalidate"
	MsgMarkers      = "markers"
	MsgNotice       = "notice"
	MsgFormCleared  = "formCleared"
)

// Notice levels.
const (
	NoticeInfo    = "info"
	NoticeSuccess = "success"
	NoticeError   = "error"
)

// ClientMessage is an inbound message of the map bridge protocol.
// The fields used depend on Type.
type ClientMessage struct {
	Type    string   `json:"type"`
	Lat     *float64 `json:"lat,omitempty"`
	Lng     *float64 `json:"lng,omitempty"`
	LatText string   `json:"latText,omitempty"`
	LngText string   `json:"lngText,omitempty"`
}

// DecodeClientMessage parses and validates an inbound message.
func DecodeClientMessage(raw []byte) (ClientMessage, error) {
	var m ClientMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		return ClientMessage{}, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	switch m.Type {
	case MsgMapClick:
		if m.Lat == nil || m.Lng == nil {
			return ClientMessage{}, fmt.Errorf("%w: mapClick requires lat and lng", ErrInvalidMessage)
		}
		if !isFinite(*m.Lat) || !isFinite(*m.Lng) {
			return ClientMessage{}, fmt.Errorf("%w: mapClick coordinates must be finite", ErrInvalidMessage)
		}
	case MsgMapReady, MsgSubmitCoordinates, MsgSave, MsgClear, MsgReload:
	case "":
		return ClientMessage{}, fmt.Errorf("%w: missing type", ErrInvalidMessage)
	default:
		return ClientMessage{}, fmt.Errorf("%w: unknown type %q", ErrInvalidMessage, m.Type)
	}
	return m, nil
}

// ServerMessage is an outbound message of the map bridge protocol. Marker
// snapshots (MsgMarkers) are sent as MarkersMessage instead.
type ServerMessage struct {
	Type    string  `json:"type"`
	Marker  *Marker `json:"marker,omitempty"`
	ID      string  `json:"id,omitempty"`
	Level   string  `json:"level,omitempty"`
	Title   string  `json:"title,omitempty"`
	Message string  `json:"message,omitempty"`
}

// MarkersMessage is the full marker list sent after each mutation. The
// markers field is present even when the list is empty.
type MarkersMessage struct {
	Type    string   `json:"type"`
	Markers []Marker `json:"markers"`
}

// Notice is a user-visible informational message.
type Notice struct {
	Level   string `json:"level"`
	Title   string `json:"title"`
	Message string `json:"message"`
}
