// Package caption turns raw caption text with {VARIABLE} placeholders into
// final caption text using values extracted from image metadata.
package caption

import (
	"math"
	"strconv"
	"strings"

	"photopost/internal/metadata"
)

// Fallback is substituted whenever a variable cannot be computed.
const Fallback = "N/A"

// Variable is one entry in the caption variable registry.
type Variable struct {
	Name        string
	Description string
	Category    string
	Extract     func(metadata.Metadata) string
}

// Registry returns all caption variables in definition order. The table is
// rebuilt per call but entries are pure functions, so callers may cache it.
func Registry() []Variable {
	return []Variable{
		// File information
		{
			Name:        "FILE_NAME",
			Description: "Image file name without extension",
			Category:    "File Info",
			Extract:     func(m metadata.Metadata) string { return m.String("file_name") },
		},
		{
			Name:        "FILE_NAME_FULL",
			Description: "Image file name with extension",
			Category:    "File Info",
			Extract:     func(m metadata.Metadata) string { return m.String("file_name_full") },
		},

		// Camera information
		{
			Name:        "IMAGE_MAKE",
			Description: "Camera manufacturer (e.g., Canon, Nikon, Panasonic)",
			Category:    "Camera",
			Extract:     func(m metadata.Metadata) string { return stringOr(m, "Make", "Unknown") },
		},
		{
			Name:        "IMAGE_MODEL",
			Description: "Camera model (e.g., EOS 5D Mark IV, DMC-TZ8)",
			Category:    "Camera",
			Extract:     func(m metadata.Metadata) string { return stringOr(m, "Model", "Unknown") },
		},
		{
			Name:        "IMAGE_MAKE_TAG",
			Description: "Camera make as hashtag (e.g., nikoncorporation)",
			Category:    "Camera",
			Extract:     func(m metadata.Metadata) string { return ToTag(m.String("Make")) },
		},
		{
			Name:        "IMAGE_MODEL_TAG",
			Description: "Camera model as hashtag (e.g., eos5dmarkiv)",
			Category:    "Camera",
			Extract:     func(m metadata.Metadata) string { return ToTag(m.String("Model")) },
		},

		// Exposure settings
		{
			Name:        "IMAGE_F_NUMBER",
			Description: "Aperture (f-stop) with \"f\" prefix",
			Category:    "Exposure",
			Extract: func(m metadata.Metadata) string {
				if f, ok := m.Float("FNumber"); ok && f != 0 {
					return "f" + metadata.Stringify(f)
				}
				return Fallback
			},
		},
		{
			Name:        "IMAGE_EXPOSURE_TIME",
			Description: "Shutter speed (e.g., 1/200 sec or 2.5 sec)",
			Category:    "Exposure",
			Extract: func(m metadata.Metadata) string {
				v, ok := m.Float("ExposureTime")
				return FormatExposureTime(v, ok && v != 0)
			},
		},
		{
			Name:        "IMAGE_ISO",
			Description: "ISO sensitivity with \"ISO\" prefix",
			Category:    "Exposure",
			Extract: func(m metadata.Metadata) string {
				if v, ok := m["ISOSpeedRatings"]; ok {
					return "ISO " + metadata.Stringify(v)
				}
				return Fallback
			},
		},
		{
			Name:        "IMAGE_PHOTOGRAPHIC_SENSITIVITY",
			Description: "ISO value only (number)",
			Category:    "Exposure",
			Extract:     func(m metadata.Metadata) string { return stringOr(m, "ISOSpeedRatings", Fallback) },
		},

		// Lens information
		{
			Name:        "IMAGE_FOCAL_LENGTH",
			Description: "Focal length with \"mm\" suffix (e.g., 42.6 mm)",
			Category:    "Lens",
			Extract: func(m metadata.Metadata) string {
				if v, ok := m.Float("FocalLength"); ok && v != 0 {
					return metadata.Stringify(v) + " mm"
				}
				return Fallback
			},
		},
		{
			Name:        "IMAGE_FOCAL_LENGTH_VALUE",
			Description: "Focal length value only (number)",
			Category:    "Lens",
			Extract:     func(m metadata.Metadata) string { return stringOr(m, "FocalLength", Fallback) },
		},

		// Date/Time
		{
			Name:        "IMAGE_DATE",
			Description: "Date photo was taken (YYYY:MM:DD)",
			Category:    "Date/Time",
			Extract:     func(m metadata.Metadata) string { return dateTimeField(m, 0) },
		},
		{
			Name:        "IMAGE_TIME",
			Description: "Time photo was taken (HH:MM:SS)",
			Category:    "Date/Time",
			Extract:     func(m metadata.Metadata) string { return dateTimeField(m, 1) },
		},
		{
			Name:        "IMAGE_DATETIME",
			Description: "Full date and time",
			Category:    "Date/Time",
			Extract: func(m metadata.Metadata) string {
				if v := m.String("DateTime"); v != "" {
					return v
				}
				return Fallback
			},
		},

		// Image properties
		{
			Name:        "IMAGE_WIDTH",
			Description: "Image width in pixels",
			Category:    "Image Properties",
			Extract:     func(m metadata.Metadata) string { return stringOr(m, "width", Fallback) },
		},
		{
			Name:        "IMAGE_HEIGHT",
			Description: "Image height in pixels",
			Category:    "Image Properties",
			Extract:     func(m metadata.Metadata) string { return stringOr(m, "height", Fallback) },
		},
		{
			Name:        "IMAGE_ORIENTATION",
			Description: "Image orientation (Portrait/Landscape/Square)",
			Category:    "Image Properties",
			Extract: func(m metadata.Metadata) string {
				w, wok := m.Int("width")
				h, hok := m.Int("height")
				return Orientation(w, h, wok && hok)
			},
		},
	}
}

// Lookup returns the registry entry with the given name.
func Lookup(name string) (Variable, bool) {
	for _, v := range Registry() {
		if v.Name == name {
			return v, true
		}
	}
	return Variable{}, false
}

// ToTag converts text to a lowercase hashtag-safe token, stripping spaces and
// hyphens. Empty, "Unknown" and "N/A" input all yield "N/A".
func ToTag(text string) string {
	if text == "" || text == "Unknown" || text == Fallback {
		return Fallback
	}
	tag := strings.ToLower(text)
	tag = strings.ReplaceAll(tag, " ", "")
	tag = strings.ReplaceAll(tag, "-", "")
	return tag
}

// FormatExposureTime renders a shutter speed: "1/200 sec" under one second,
// "2.5 sec" otherwise, "N/A" when the value is absent.
func FormatExposureTime(seconds float64, ok bool) string {
	if !ok {
		return Fallback
	}
	if seconds >= 1 {
		return metadata.Stringify(seconds) + " sec"
	}
	return "1/" + strconv.FormatInt(int64(math.Round(1/seconds)), 10) + " sec"
}

// Orientation classifies the frame by its pixel dimensions.
func Orientation(width, height int64, ok bool) string {
	switch {
	case !ok:
		return Fallback
	case width > height:
		return "Landscape"
	case height > width:
		return "Portrait"
	default:
		return "Square"
	}
}

func stringOr(m metadata.Metadata, key, fallback string) string {
	if v, ok := m[key]; ok {
		return metadata.Stringify(v)
	}
	return fallback
}

func dateTimeField(m metadata.Metadata, index int) string {
	fields := strings.Fields(m.String("DateTime"))
	if index < len(fields) {
		return fields[index]
	}
	return Fallback
}
