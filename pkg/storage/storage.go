// Package storage provides the namespaced key/value persistent store the
// gateway reads account-profile data from, with a SQLite backend for devices
// and an in-memory backend for tests.
package storage

import (
	"context"
	"errors"
)

// Namespace and key names for the account-profile values sourced by the
// metrics context at boot.
const (
	NamespaceAccountProfile = "accountProfile"

	KeyProposition        = "proposition"
	KeyRetailer           = "retailer"
	KeyPrimaryProvider    = "jvagent"
	KeyCoam               = "coam"
	KeyAccountType        = "accountType"
	KeyOperator           = "operator"
	KeyAccountDetailType  = "detailType"
	KeyDeviceType         = "deviceType"
	KeyDeviceManufacturer = "deviceManufacturer"
)

// ErrNotFound is returned when a namespace/key pair has no value.
var ErrNotFound = errors.New("storage: value not found")

// Store is the persistent storage surface the gateway depends on. Values are
// strings or booleans; absent values return ErrNotFound.
type Store interface {
	GetString(ctx context.Context, namespace, key string) (string, error)
	GetBool(ctx context.Context, namespace, key string) (bool, error)
	SetString(ctx context.Context, namespace, key, value string) error
	SetBool(ctx context.Context, namespace, key string, value bool) error
}
