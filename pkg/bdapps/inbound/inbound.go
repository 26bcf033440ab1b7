// Package inbound validates the JSON bodies BDApps posts to an application's
// webhook endpoints: SMS delivery reports, incoming SMS, incoming USSD and
// subscription notifications.
//
// Validation is a pure function of the body bytes. Each kind has a fixed,
// ordered list of required fields; the first one that is absent or null is
// reported. Fields outside the list pass through untouched.
package inbound

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/aradsms/bdappsapi/pkg/bdapps/apierr"
)

// Kind identifies an inbound message type.
type Kind int

const (
	DeliveryReport Kind = iota + 1
	IncomingSMS
	IncomingUSSD
	SubscriptionNotification
)

var requiredFields = map[Kind][]string{
	DeliveryReport:           {"destinationAddress", "timeStamp", "requestId", "deliveryStatus"},
	IncomingSMS:              {"message", "requestId", "applicationId", "sourceAddress", "version"},
	IncomingUSSD:             {"message", "sessionId", "ussdOperation", "applicationId", "sourceAddress"},
	SubscriptionNotification: {"frequency", "status", "subscriberId", "applicationId", "timeStamp"},
}

// subject is the noun used in MalformedPayload messages.
func (k Kind) subject() string {
	switch k {
	case DeliveryReport:
		return "delivery report"
	case IncomingSMS:
		return "SMS"
	case IncomingUSSD:
		return "USSD message"
	case SubscriptionNotification:
		return "subscription notification"
	default:
		return "payload"
	}
}

func (k Kind) String() string {
	switch k {
	case DeliveryReport:
		return "delivery_report"
	case IncomingSMS:
		return "incoming_sms"
	case IncomingUSSD:
		return "incoming_ussd"
	case SubscriptionNotification:
		return "subscription_notification"
	default:
		return "unknown"
	}
}

// RequiredFields returns a copy of the ordered required-field list for k.
func (k Kind) RequiredFields() []string {
	return append([]string(nil), requiredFields[k]...)
}

// Validate parses body and checks the required fields of kind. On success the
// full parsed object is returned; numbers are kept as json.Number so values
// such as request IDs survive unchanged.
func Validate(kind Kind, body []byte) (map[string]any, error) {
	required, ok := requiredFields[kind]
	if !ok {
		return nil, apierr.MalformedPayload(kind.subject(), fmt.Errorf("unknown inbound kind %d", kind))
	}

	payload, err := parse(body)
	if err != nil {
		return nil, apierr.MalformedPayload(kind.subject(), err)
	}

	for _, field := range required {
		if v, ok := payload[field]; !ok || v == nil {
			return nil, apierr.MissingField(field)
		}
	}
	return payload, nil
}

// parse decodes exactly one JSON value. Well-formed JSON that is not an object
// yields an empty map, so it fails on the first required field rather than as
// a parse error.
func parse(body []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after top-level value")
	}

	obj, ok := v.(map[string]any)
	if !ok {
		return map[string]any{}, nil
	}
	return obj, nil
}
