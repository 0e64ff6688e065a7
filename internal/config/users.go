package config

import (
	"sort"
	"strings"
)

// UserCredentials is one credential set a run executes for. Each user gets
// a fully independent pipeline pass.
type UserCredentials struct {
	Name         string
	ClientID     string
	ClientSecret string
	RefreshToken string
}

func (u UserCredentials) complete() bool {
	return u.ClientID != "" && u.ClientSecret != "" && u.RefreshToken != ""
}

const userEnvPrefix = "SPOTIFY_USER_"

// DiscoverUsers scans the environment for SPOTIFY_USER_<NAME>_CLIENT_ID,
// _CLIENT_SECRET, and _REFRESH_TOKEN triples. Users missing any of the
// three come back in the second return value so the caller can warn.
// Names are reported lowercase and sorted, keeping run order stable.
func DiscoverUsers(environ []string) ([]UserCredentials, []string) {
	byName := make(map[string]*UserCredentials)
	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || value == "" || !strings.HasPrefix(key, userEnvPrefix) {
			continue
		}
		rest := strings.TrimPrefix(key, userEnvPrefix)

		var suffix string
		switch {
		case strings.HasSuffix(rest, "_CLIENT_ID"):
			suffix = "_CLIENT_ID"
		case strings.HasSuffix(rest, "_CLIENT_SECRET"):
			suffix = "_CLIENT_SECRET"
		case strings.HasSuffix(rest, "_REFRESH_TOKEN"):
			suffix = "_REFRESH_TOKEN"
		default:
			continue
		}
		name := strings.TrimSuffix(rest, suffix)
		if name == "" {
			continue
		}

		u := byName[name]
		if u == nil {
			u = &UserCredentials{Name: strings.ToLower(name)}
			byName[name] = u
		}
		switch suffix {
		case "_CLIENT_ID":
			u.ClientID = value
		case "_CLIENT_SECRET":
			u.ClientSecret = value
		case "_REFRESH_TOKEN":
			u.RefreshToken = value
		}
	}

	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)

	var users []UserCredentials
	var incomplete []string
	for _, name := range names {
		u := byName[name]
		if u.complete() {
			users = append(users, *u)
		} else {
			incomplete = append(incomplete, u.Name)
		}
	}
	return users, incomplete
}

// SingleUser builds the lone credential set from the flat SPOTIFY_* fields.
// It is the fallback when no SPOTIFY_USER_* variables are present.
func (c *Config) SingleUser() (UserCredentials, bool) {
	u := UserCredentials{
		Name:         "default",
		ClientID:     c.Spotify.ClientID,
		ClientSecret: c.Spotify.ClientSecret,
		RefreshToken: c.Spotify.RefreshToken,
	}
	return u, u.complete()
}
