package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"time"

	"github.com/harborchat/harbor/internal/gate/domain"
	"github.com/harborchat/harbor/internal/gate/idp"
)

// defaultAvatarURL is assigned to newly registered accounts.
const defaultAvatarURL = "https://cdn.casbin.org/img/casbin.svg"

// AccountService performs account mutations against the provider on a
// user's behalf, authorized by the bearer token embedded in their
// session. This is the only component allowed to use that token for
// anything beyond lookup.
type AccountService struct {
	IdP *idp.Client
}

// ChangePassword re-validates the old password through the same
// password-grant path used at login before touching anything. A wrong
// old password returns ErrInvalidCredentials and mutates neither the
// provider record nor the local store.
func (s *AccountService) ChangePassword(
	ctx context.Context,
	bearer domain.BearerToken,
	oldPassword, newPassword string,
) error {
	account, err := s.IdP.FetchAccount(ctx, bearer)
	if err != nil {
		return err
	}

	if _, err := s.IdP.ExchangePassword(ctx, account.Name(), oldPassword, account.Owner()); err != nil {
		return err
	}

	account["password"] = newPassword
	return s.IdP.UpdateUser(ctx, account.SubjectID(), bearer, account)
}

// UpdateProfile merges the changed fields into the current provider
// account record and posts the whole record back.
func (s *AccountService) UpdateProfile(
	ctx context.Context,
	bearer domain.BearerToken,
	changes map[string]any,
) error {
	account, err := s.IdP.FetchAccount(ctx, bearer)
	if err != nil {
		return err
	}

	for k, v := range changes {
		account[k] = v
	}

	return s.IdP.UpdateUser(ctx, account.SubjectID(), bearer, account)
}

// UploadAvatar proxies an avatar file into the provider's resource
// store and returns the stored URL. The timestamp suffix keeps repeat
// uploads of the same filename from colliding.
func (s *AccountService) UploadAvatar(
	ctx context.Context,
	bearer domain.BearerToken,
	filename string,
	file io.Reader,
) (string, error) {
	account, err := s.IdP.FetchAccount(ctx, bearer)
	if err != nil {
		return "", err
	}

	fullPath := fmt.Sprintf("avatar/%s-%d", filename, time.Now().UnixMilli())
	return s.IdP.UploadResource(
		ctx,
		bearer,
		account.Owner(),
		s.IdP.Application(),
		"avatar",
		fullPath,
		filename,
		file,
	)
}

// RegisterWithPhone provisions a provider account named after the phone
// number. Authorization comes from the built-in administrator token -
// ordinary tokens cannot choose account names. When no password is
// given a random one is generated; the user signs in by code.
func (s *AccountService) RegisterWithPhone(ctx context.Context, phone, password string) error {
	if password == "" {
		password = randomPassword()
	}

	return s.register(ctx, idp.Account{
		"owner":       s.IdP.Organization(),
		"name":        phone,
		"displayName": phone,
		"password":    password,
		"phone":       phone,
		"countryCode": "CN",
		"type":        "normal-user",
		"avatar":      defaultAvatarURL,
		"properties":  map[string]any{},
	})
}

// RegisterWithPassword provisions a provider account with an explicit
// username and password.
func (s *AccountService) RegisterWithPassword(ctx context.Context, username, password string) error {
	return s.register(ctx, idp.Account{
		"owner":       s.IdP.Organization(),
		"name":        username,
		"displayName": username,
		"password":    password,
		"type":        "normal-user",
		"avatar":      defaultAvatarURL,
		"properties":  map[string]any{},
	})
}

func (s *AccountService) register(ctx context.Context, account idp.Account) error {
	adminToken, err := s.IdP.ExchangeAdminPassword(ctx)
	if err != nil {
		return err
	}
	return s.IdP.AddUser(ctx, adminToken, account)
}

func randomPassword() string {
	var b [6]byte
	_, _ = rand.Read(b[:])
	// Suffix satisfies the provider's complexity rules.
	return hex.EncodeToString(b[:]) + "Aa1+"
}
