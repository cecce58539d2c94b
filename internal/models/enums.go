// internal/models/enums.go
package models

import (
	"fmt"
	"strings"
)

type Country string

const (
	CountryPE Country = "PE"
	CountryCO Country = "CO"
)

var countryNames = map[Country]string{
	CountryPE: "Perú",
	CountryCO: "Colombia",
}

func (c Country) DisplayName() string { return countryNames[c] }

type Vertical string

const (
	VerticalMotoPersona  Vertical = "MOTOPER"
	VerticalMotoDelivery Vertical = "MOTODEL"
	VerticalCargo        Vertical = "CARGO"
	VerticalAutoPersona  Vertical = "AUTOPER"
	VerticalB2B          Vertical = "B2B"
	VerticalPremier      Vertical = "PREMIER"
	VerticalConfort      Vertical = "CONFORT"
	VerticalYegoPro      Vertical = "YEGOPRO"
	VerticalYegoMiAuto   Vertical = "YEGOMIAUTO"
	VerticalYegoMiMoto   Vertical = "YEGOMIMOTO"
)

var verticalNames = map[Vertical]string{
	VerticalMotoPersona:  "Moto Persona",
	VerticalMotoDelivery: "Moto Delivery",
	VerticalCargo:        "Cargo",
	VerticalAutoPersona:  "Auto Persona",
	VerticalB2B:          "B2B",
	VerticalPremier:      "Premier",
	VerticalConfort:      "Confort",
	VerticalYegoPro:      "YegoPro",
	VerticalYegoMiAuto:   "YegoMiAuto",
	VerticalYegoMiMoto:   "YegoMiMoto",
}

func (v Vertical) DisplayName() string { return verticalNames[v] }

type Platform string

const (
	PlatformFacebook  Platform = "FB"
	PlatformTikTok    Platform = "TT"
	PlatformInstagram Platform = "IG"
	PlatformGoogle    Platform = "GG"
	PlatformLinkedIn  Platform = "LI"
)

var platformNames = map[Platform]string{
	PlatformFacebook:  "Facebook Ads",
	PlatformTikTok:    "TikTok Ads",
	PlatformInstagram: "Instagram Ads",
	PlatformGoogle:    "Google Ads",
	PlatformLinkedIn:  "LinkedIn Ads",
}

func (p Platform) DisplayName() string { return platformNames[p] }

type Segment string

const (
	SegmentAcquisition     Segment = "ADQUISICION"
	SegmentRetention       Segment = "RETENCION"
	SegmentReturn          Segment = "RETORNO"
	SegmentMoreViews       Segment = "MAS_VISTAS"
	SegmentMoreFollowers   Segment = "MAS_SEGUIDORES"
	SegmentMoreProfileView Segment = "MAS_VISTAS_PERFIL"
)

var segmentNames = map[Segment]string{
	SegmentAcquisition:     "Adquisición",
	SegmentRetention:       "Retención",
	SegmentReturn:          "Retorno",
	SegmentMoreViews:       "Más Vistas",
	SegmentMoreFollowers:   "Más Seguidores",
	SegmentMoreProfileView: "Más Vistas del Perfil",
}

// Abbreviations used when composing campaign names. Segments without a
// dedicated code fall back to XXX.
var segmentAbbrevs = map[Segment]string{
	SegmentAcquisition: "ADQ",
	SegmentRetention:   "RET",
	SegmentReturn:      "RTO",
}

func (s Segment) DisplayName() string { return segmentNames[s] }

func (s Segment) Abbrev() string {
	if a, ok := segmentAbbrevs[s]; ok {
		return a
	}
	return "XXX"
}

func ParseCountry(value string) (Country, error) {
	for code, name := range countryNames {
		if equalsLoose(value, string(code)) || equalsLoose(value, name) {
			return code, nil
		}
	}
	return "", fmt.Errorf("unknown country %q", value)
}

func ParseVertical(value string) (Vertical, error) {
	for code, name := range verticalNames {
		if equalsLoose(value, string(code)) || equalsLoose(value, name) {
			return code, nil
		}
	}
	return "", fmt.Errorf("unknown vertical %q", value)
}

func ParsePlatform(value string) (Platform, error) {
	for code, name := range platformNames {
		if equalsLoose(value, string(code)) || equalsLoose(value, name) {
			return code, nil
		}
	}
	return "", fmt.Errorf("unknown platform %q", value)
}

func ParseSegment(value string) (Segment, error) {
	for code, name := range segmentNames {
		if equalsLoose(value, string(code)) || equalsLoose(value, name) {
			return code, nil
		}
	}
	return "", fmt.Errorf("unknown segment %q", value)
}

var accentFolder = strings.NewReplacer(
	"á", "a", "é", "e", "í", "i", "ó", "o", "ú", "u",
	"Á", "A", "É", "E", "Í", "I", "Ó", "O", "Ú", "U",
	"ñ", "n", "Ñ", "N",
)

// equalsLoose compares codes and display names ignoring case, accents and
// space/underscore differences, so "Adquisición", "ADQUISICION" and
// "adquisicion" all resolve to the same segment.
func equalsLoose(a, b string) bool {
	norm := func(s string) string {
		s = accentFolder.Replace(strings.TrimSpace(s))
		s = strings.ReplaceAll(s, " ", "_")
		return strings.ToUpper(s)
	}
	return norm(a) == norm(b)
}

type LandingType string

const (
	LandingForms      LandingType = "FORMS"
	LandingWhatsApp   LandingType = "WHATSAPP"
	LandingURL        LandingType = "URL"
	LandingPage       LandingType = "LANDING"
	LandingApp        LandingType = "APP"
	LandingCallCenter LandingType = "CALL_CENTER"
	LandingEmail      LandingType = "EMAIL"
	LandingOther      LandingType = "OTRO"
)
