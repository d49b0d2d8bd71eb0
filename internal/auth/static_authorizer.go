package auth

import (
	"context"
	"errors"
)

const (
	// LocalDevStudentKey and LocalDevStaffKey are hardcoded keys for local
	// development only.
	LocalDevStudentKey = "sk_local_ptlog_student_key"
	LocalDevStaffKey   = "sk_local_ptlog_staff_key"
)

// StaticAuthorizer resolves keys from a fixed map. Used for local
// development and tests.
type StaticAuthorizer struct {
	actors map[string]ActorInfo
}

// NewStaticAuthorizer builds an authorizer over the given key->actor map.
func NewStaticAuthorizer(actors map[string]ActorInfo) *StaticAuthorizer {
	return &StaticAuthorizer{actors: actors}
}

// NewLocalDevAuthorizer recognises the two hardcoded local development keys.
func NewLocalDevAuthorizer() *StaticAuthorizer {
	return NewStaticAuthorizer(map[string]ActorInfo{
		LocalDevStudentKey: {ActorID: "ptlog-dev", KeyType: "student", KeyName: "Local Development Student Key"},
		LocalDevStaffKey:   {ActorID: "ptlog-dev-staff", KeyType: "staff", KeyName: "Local Development Staff Key"},
	})
}

func (a *StaticAuthorizer) Authorize(_ context.Context, apiKey string) (*ActorInfo, error) {
	actor, ok := a.actors[apiKey]
	if !ok {
		return nil, errors.New("invalid API key")
	}
	return &actor, nil
}
