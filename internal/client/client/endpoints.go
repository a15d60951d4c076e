package client

import (
	"strings"

	"github.com/dmitrijs2005/studenthub/internal/models"
)

// Endpoints are the base URLs of the services. A collection without its own
// entry in Collections is served by Auth.
type Endpoints struct {
	Auth        string
	Profile     string
	Collections map[models.Collection]string
}

func (e Endpoints) auth() string {
	return strings.TrimRight(e.Auth, "/")
}

func (e Endpoints) profile() string {
	if e.Profile == "" {
		return e.auth()
	}
	return strings.TrimRight(e.Profile, "/")
}

func (e Endpoints) collection(c models.Collection) string {
	if base, ok := e.Collections[c]; ok && base != "" {
		return strings.TrimRight(base, "/")
	}
	return e.auth()
}
