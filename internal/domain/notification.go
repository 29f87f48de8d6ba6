package domain

import (
	"encoding/json"
	"strconv"
	"strings"
)

type Operation string

const (
	OperationInsert Operation = "INSERT"
	OperationUpdate Operation = "UPDATE"
	OperationDelete Operation = "DELETE"
)

// ChangeNotification is one NOTIFY payload emitted by the items trigger:
// {"TG_OP": "...", "item_id": N}.
type ChangeNotification struct {
	Operation Operation
	ItemID    int64
}

func DecodeNotification(payload string) (ChangeNotification, error) {
	var n ChangeNotification

	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		return n, &DecodeError{Payload: payload, Reason: "invalid json", Err: err}
	}

	opRaw, ok := raw["TG_OP"]
	if !ok {
		return n, &DecodeError{Payload: payload, Reason: "missing TG_OP"}
	}
	var op string
	if err := json.Unmarshal(opRaw, &op); err != nil {
		return n, &DecodeError{Payload: payload, Reason: "TG_OP is not a string", Err: err}
	}
	switch Operation(strings.ToUpper(op)) {
	case OperationInsert, OperationUpdate, OperationDelete:
		n.Operation = Operation(strings.ToUpper(op))
	default:
		return n, &DecodeError{Payload: payload, Reason: "unknown TG_OP " + op}
	}

	idRaw, ok := raw["item_id"]
	if !ok {
		return n, &DecodeError{Payload: payload, Reason: "missing item_id"}
	}
	id, err := parseItemID(idRaw)
	if err != nil {
		return n, &DecodeError{Payload: payload, Reason: "invalid item_id", Err: err}
	}
	n.ItemID = id
	return n, nil
}

// item_id llega como número, pero se acepta también como string.
func parseItemID(raw json.RawMessage) (int64, error) {
	var num json.Number
	if err := json.Unmarshal(raw, &num); err == nil {
		return num.Int64()
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, err
	}
	return strconv.ParseInt(s, 10, 64)
}
