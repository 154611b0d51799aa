package appfs

import "embed"

// FS holds the database migrations and the static assets.
//
//go:embed migrations/*.sql assets/*.gz assets/templates/email/*
var FS embed.FS
