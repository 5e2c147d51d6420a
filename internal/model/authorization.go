package model

import "fmt"

type AuthorizationStatus int

const (
	StatusNotDetermined AuthorizationStatus = iota
	StatusDenied
	StatusAuthorized
	StatusProvisional
	StatusEphemeral
)

var statusNames = map[AuthorizationStatus]string{
	StatusNotDetermined: "notDetermined",
	StatusDenied:        "denied",
	StatusAuthorized:    "authorized",
	StatusProvisional:   "provisional",
	StatusEphemeral:     "ephemeral",
}

func (s AuthorizationStatus) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("AuthorizationStatus(%d)", int(s))
}

// Allows reports whether the status belongs to the authorized family.
func (s AuthorizationStatus) Allows() bool {
	return s == StatusAuthorized || s == StatusProvisional || s == StatusEphemeral
}

func ParseAuthorizationStatus(s string) (AuthorizationStatus, error) {
	for status, name := range statusNames {
		if name == s {
			return status, nil
		}
	}
	return StatusNotDetermined, fmt.Errorf("unknown authorization status %q", s)
}

func (s AuthorizationStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *AuthorizationStatus) UnmarshalText(b []byte) error {
	status, err := ParseAuthorizationStatus(string(b))
	if err != nil {
		return err
	}
	*s = status
	return nil
}

type AuthorizationOptions uint8

const (
	OptionAlert AuthorizationOptions = 1 << iota
	OptionSound
	OptionBadge
)

func (o AuthorizationOptions) Has(opt AuthorizationOptions) bool {
	return o&opt != 0
}
