// Package provider defines the typed boundary to the remote metadata
// extractor.
//
// The engine consumes the [Provider] interface; [YTDLP] implements it by
// shelling out to the yt-dlp binary and decoding its JSON dumps into
// explicit structs. Required fields are validated at decode time so absence
// surfaces as a typed error instead of zero values leaking into the store.
package provider
