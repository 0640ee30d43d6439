package resources

import "embed"

//go:embed migrations i18n lexicon
var FS embed.FS
