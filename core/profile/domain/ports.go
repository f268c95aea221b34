// Copyright 2025 Nhat-Nguyen Nguyen
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package domain

import (
	"context"
)

// ProfileReadStore defines the port for read operations on profiles.
//
// Separated from ProfileWriteStore so implementations can route reads to
// replica databases. All methods are read-only. Absence of a row is reported
// as ErrProfileNotFound, never as a nil result.
type ProfileReadStore interface {
	// GetProfileByID retrieves a single profile by its surrogate key.
	GetProfileByID(ctx context.Context, id int64) (*Profile, error)

	// GetProfileByUserID retrieves the profile linked to a remote account id.
	GetProfileByUserID(ctx context.Context, userID int64) (*Profile, error)

	// GetAllProfiles returns every profile row. Pagination is a documented
	// gap; callers get the full table.
	GetAllProfiles(ctx context.Context) ([]Profile, error)
}

// ProfileWriteStore defines the port for write operations on profiles.
//
// Implementations are bound to the primary database connection and should use
// prepared statements. There is no optimistic locking: concurrent updates on
// the same id are last-write-wins, and callers must not assume
// serializability.
type ProfileWriteStore interface {
	// InsertProfile inserts a new row linked to the given remote account id
	// and returns the generated surrogate key. The insert result does not
	// carry every store-computed field; callers needing the canonical row
	// must re-read it by id.
	InsertProfile(ctx context.Context, fields *UpdateDraft, userID int64) (int64, error)

	// UpdateProfile applies the credential-free fields plus the avatar
	// reference and returns the updated row.
	// Returns ErrProfileNotFound if the row is absent.
	UpdateProfile(ctx context.Context, id int64, fields *UpdateDraft, avatar string) (*Profile, error)

	// DeleteProfile physically removes the row and returns the pre-delete
	// snapshot. Returns ErrProfileNotFound if the row is absent.
	DeleteProfile(ctx context.Context, id int64) (*Profile, error)
}

// IdentityClient issues command/response requests to the remote identity
// service, which owns credentials, tokens and third-party login.
//
// A non-nil error means the transport itself failed. Application-level
// rejections come back inside the reply as an ErrorEnvelope; the orchestrator
// is responsible for detecting and translating that envelope.
type IdentityClient interface {
	CreateUser(ctx context.Context, draft *RegistrationDraft) (*AuthResult, error)
	Login(ctx context.Context, req *LoginRequest) (*AuthResult, error)
	Logout(ctx context.Context, refreshToken string) (*Ack, error)
	Refresh(ctx context.Context, refreshToken string) (*AuthResult, error)
	// Activate is fire-and-forget; the reply is not awaited.
	Activate(ctx context.Context, activationLink string) error
	UpdateUser(ctx context.Context, userID int64, draft *RegistrationDraft) (*Ack, error)
	DeleteUser(ctx context.Context, userID int64) (*Ack, error)
	// GetUser returns (nil, nil) when no account matches the filter.
	GetUser(ctx context.Context, filter *AccountFilter) (*Account, error)
}

// OAuthToken is the result of exchanging an authorization code.
type OAuthToken struct {
	AccessToken    string
	ExternalUserID int64
	Email          string
}

// OAuthProfile holds the public profile fields fetched from the provider.
type OAuthProfile struct {
	FirstName string
	LastName  string
}

// OAuthBridge wraps the third-party OAuth token exchange and profile-fetch
// API used by the VK login flow.
type OAuthBridge interface {
	ExchangeCode(ctx context.Context, code string) (*OAuthToken, error)
	FetchPublicProfile(ctx context.Context, externalUserID int64, accessToken string) (*OAuthProfile, error)
}
