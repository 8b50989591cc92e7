package stripe

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidSignature is returned for missing, malformed, stale, or
// forged webhook signatures. The handler answers 400 and stops; the
// gateway redelivers on its own schedule.
var ErrInvalidSignature = errors.New("stripe: invalid webhook signature")

// DefaultTolerance bounds how old a signed payload may be. Outside the
// window a replayed capture is rejected even with a valid MAC.
const DefaultTolerance = 5 * time.Minute

// ConstructEvent verifies the signature header against the client's
// webhook secret and decodes the event payload.
func (c *Client) ConstructEvent(payload []byte, sigHeader string) (Event, error) {
	return ConstructEvent(payload, sigHeader, c.webhookSecret, DefaultTolerance)
}

// ConstructEvent verifies sigHeader ("t=<unix>,v1=<hex hmac>, ...")
// against secret and decodes the payload into an Event. The MAC covers
// "<t>.<payload>" with HMAC-SHA256; any one valid v1 entry passes
// (the gateway sends several during secret rotation).
func ConstructEvent(payload []byte, sigHeader, secret string, tolerance time.Duration) (Event, error) {
	var event Event

	ts, sigs, err := parseSignatureHeader(sigHeader)
	if err != nil {
		return event, err
	}

	if tolerance > 0 {
		age := time.Since(time.Unix(ts, 0))
		if age > tolerance || age < -tolerance {
			return event, fmt.Errorf("%w: timestamp outside tolerance", ErrInvalidSignature)
		}
	}

	expected := ComputeSignature(ts, payload, secret)
	valid := false
	for _, sig := range sigs {
		if hmac.Equal([]byte(sig), []byte(expected)) {
			valid = true
			break
		}
	}
	if !valid {
		return event, ErrInvalidSignature
	}

	if err := json.Unmarshal(payload, &event); err != nil {
		return event, fmt.Errorf("stripe: decoding event: %w", err)
	}
	return event, nil
}

// ComputeSignature returns the hex HMAC-SHA256 of "<ts>.<payload>".
// Exported so tests can build valid signature headers.
func ComputeSignature(ts int64, payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.", ts)
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

func parseSignatureHeader(header string) (int64, []string, error) {
	if header == "" {
		return 0, nil, fmt.Errorf("%w: missing signature header", ErrInvalidSignature)
	}

	var ts int64
	var sigs []string
	for _, part := range strings.Split(header, ",") {
		k, v, found := strings.Cut(strings.TrimSpace(part), "=")
		if !found {
			continue
		}
		switch k {
		case "t":
			parsed, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return 0, nil, fmt.Errorf("%w: bad timestamp", ErrInvalidSignature)
			}
			ts = parsed
		case "v1":
			sigs = append(sigs, v)
		}
	}

	if ts == 0 || len(sigs) == 0 {
		return 0, nil, fmt.Errorf("%w: malformed signature header", ErrInvalidSignature)
	}
	return ts, sigs, nil
}
