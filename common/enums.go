// Package common keeps enumerations shared between configuration and the
// packages doing actual work, so neither has to import the other.
package common

//go:generate go tool go-enum --marshal --names --mustparse --nocase

// Placement algorithm used to arrange images on a sheet.
// ENUM(binary-tree, top-down, left-right, diagonal, alt-diagonal)
type Layout int

// Image format of produced sprite sheets.
// ENUM(png, jpeg)
type SheetFormat int

func (f SheetFormat) Ext() string {
	switch f {
	case SheetFormatPng:
		return ".png"
	case SheetFormatJpeg:
		return ".jpg"
	default:
		// this should never happen
		panic("unsupported sheet format requested")
	}
}

// Format of the optional sprite manifest written next to the stylesheet.
// ENUM(none, json, yaml)
type ManifestFormat int

func (m ManifestFormat) Ext() string {
	switch m {
	case ManifestFormatJson:
		return ".sprites.json"
	case ManifestFormatYaml:
		return ".sprites.yaml"
	default:
		return ""
	}
}
