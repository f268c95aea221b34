package domain

import (
	"time"
)

type (
	// Profile is the domain model used by the application layer.
	Profile struct {
		ID        int64      `json:"id"`
		NickName  string     `json:"nickName"`
		FirstName string     `json:"firstName"`
		LastName  string     `json:"lastName"`
		Phone     string     `json:"phone"`
		Avatar    string     `json:"avatar"`
		UserID    *int64     `json:"userId"`
		CreatedAt time.Time  `json:"createdAt"`
		UpdatedAt time.Time  `json:"updatedAt"`
	}

	// RegistrationDraft is the union of profile fields and the account fields
	// the identity service needs to create credentials. Built per request,
	// never persisted.
	RegistrationDraft struct {
		NickName  string `json:"nickName"`
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
		Phone     string `json:"phone"`
		Email     string `json:"email"`
		Password  string `json:"password"`
		Provider  string `json:"provider"`
		VkID      *int64 `json:"vkId"`
	}

	// UpdateDraft is the credential-free subset of RegistrationDraft that is
	// allowed to reach the profile store.
	UpdateDraft struct {
		NickName  string
		FirstName string
		LastName  string
		Phone     string
	}

	LoginRequest struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Provider string `json:"provider"`
	}

	// Account is the remote-owned credential record, referenced by id from a
	// Profile. Opaque to this service; its fields are only held transiently.
	Account struct {
		ID             int64  `json:"id"`
		Email          string `json:"email"`
		Password       string `json:"password"`
		IsActivated    bool   `json:"isActivated"`
		ActivationLink string `json:"activationLink"`
		VkID           *int64 `json:"vkId"`
	}

	// ErrorEnvelope signals an application-level rejection from a remote
	// command, carried inside the reply payload instead of a transport fault.
	ErrorEnvelope struct {
		Message    string `json:"message"`
		StatusCode int    `json:"statusCode"`
	}

	// AuthResult is the identity service reply shape for createUser, login
	// and refresh.
	AuthResult struct {
		User         *Account       `json:"user,omitempty"`
		AccessToken  string         `json:"accessToken,omitempty"`
		RefreshToken string         `json:"refreshToken,omitempty"`
		Exception    *ErrorEnvelope `json:"exception,omitempty"`
	}

	// Ack is the identity service reply shape for updateUser, deleteUser and
	// logout.
	Ack struct {
		Affected  int64          `json:"affected"`
		Exception *ErrorEnvelope `json:"exception,omitempty"`
	}

	// AccountFilter selects a remote account by email and/or linked VK id.
	AccountFilter struct {
		Email string `json:"email,omitempty"`
		VkID  *int64 `json:"vkId,omitempty"`
	}

	// RegistrationResult pairs the created profile with the credentials
	// returned by account creation.
	RegistrationResult struct {
		Profile      *Profile `json:"profile"`
		AccessToken  string   `json:"accessToken"`
		RefreshToken string   `json:"refreshToken"`
	}
)

// Fields strips the credential-bearing fields from a draft. The store must
// never hold copies of email or password.
func (d *RegistrationDraft) Fields() *UpdateDraft {
	return &UpdateDraft{
		NickName:  d.NickName,
		FirstName: d.FirstName,
		LastName:  d.LastName,
		Phone:     d.Phone,
	}
}

// FillAbsent copies the stored values into fields the draft left empty. An
// empty string on the wire means "not sent", so a partial update must not
// erase the columns it omits.
func (d *UpdateDraft) FillAbsent(current *Profile) {
	if d.NickName == "" {
		d.NickName = current.NickName
	}
	if d.FirstName == "" {
		d.FirstName = current.FirstName
	}
	if d.LastName == "" {
		d.LastName = current.LastName
	}
	if d.Phone == "" {
		d.Phone = current.Phone
	}
}
