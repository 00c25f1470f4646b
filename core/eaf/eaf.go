// Package eaf converts annotation grids to and from the ELAN annotation
// format (EAF version 2.7).
//
// Export emits one TIER of ALIGNABLE_ANNOTATION elements per interval
// tier, with boundary times collected into the document's TIME_ORDER as
// millisecond time slots. Point tiers have no alignable representation
// and are rejected. Import reverses the mapping: annotations become
// labeled intervals and the unannotated remainder of each tier is filled
// with empty intervals.
package eaf

import (
	"encoding/xml"
	"fmt"
	"time"

	"github.com/hbuschme/TextGridTools/core/annot"
	"github.com/hbuschme/TextGridTools/core/errors"
)

const (
	author         = "TextGridTools"
	formatVersion  = "2.7"
	xsiNamespace   = "http://www.w3.org/2001/XMLSchema-instance"
	schemaLocation = "http://www.mpi.nl/tools/elan/EAFv2.7.xsd"
	linguisticType = "default-lt"
)

// Format name carried by FormatError values.
const formatEAF = "eaf"

type eafDocument struct {
	XMLName         xml.Name            `xml:"ANNOTATION_DOCUMENT"`
	Author          string              `xml:"AUTHOR,attr"`
	Date            string              `xml:"DATE,attr"`
	Format          string              `xml:"FORMAT,attr"`
	Version         string              `xml:"VERSION,attr"`
	XsiNamespace    string              `xml:"xmlns:xsi,attr"`
	SchemaLocation  string              `xml:"xsi:noNamespaceSchemaLocation,attr"`
	Header          eafHeader           `xml:"HEADER"`
	TimeOrder       eafTimeOrder        `xml:"TIME_ORDER"`
	Tiers           []eafTier           `xml:"TIER"`
	LinguisticTypes []eafLinguisticType `xml:"LINGUISTIC_TYPE"`
	Locales         []eafLocale         `xml:"LOCALE"`
}

type eafHeader struct {
	MediaFile  string        `xml:"MEDIA_FILE,attr"`
	TimeUnits  string        `xml:"TIME_UNITS,attr"`
	Properties []eafProperty `xml:"PROPERTY"`
}

type eafProperty struct {
	Name  string `xml:"NAME,attr"`
	Value string `xml:",chardata"`
}

type eafTimeOrder struct {
	Slots []eafTimeSlot `xml:"TIME_SLOT"`
}

type eafTimeSlot struct {
	ID    string `xml:"TIME_SLOT_ID,attr"`
	Value int64  `xml:"TIME_VALUE,attr"`
}

type eafTier struct {
	Locale      string          `xml:"DEFAULT_LOCALE,attr"`
	TypeRef     string          `xml:"LINGUISTIC_TYPE_REF,attr"`
	ID          string          `xml:"TIER_ID,attr"`
	Annotations []eafAnnotation `xml:"ANNOTATION"`
}

type eafAnnotation struct {
	Alignable eafAlignable `xml:"ALIGNABLE_ANNOTATION"`
}

type eafAlignable struct {
	ID    string `xml:"ANNOTATION_ID,attr"`
	Ref1  string `xml:"TIME_SLOT_REF1,attr"`
	Ref2  string `xml:"TIME_SLOT_REF2,attr"`
	Value string `xml:"ANNOTATION_VALUE"`
}

type eafLinguisticType struct {
	GraphicReferences bool   `xml:"GRAPHIC_REFERENCES,attr"`
	ID                string `xml:"LINGUISTIC_TYPE_ID,attr"`
	TimeAlignable     bool   `xml:"TIME_ALIGNABLE,attr"`
}

type eafLocale struct {
	CountryCode  string `xml:"COUNTRY_CODE,attr"`
	LanguageCode string `xml:"LANGUAGE_CODE,attr"`
}

// slotTable assigns time slot identifiers in first-use order, one slot
// per distinct boundary time.
type slotTable struct {
	ids   map[annot.Time]string
	slots []eafTimeSlot
}

func newSlotTable() *slotTable {
	return &slotTable{ids: make(map[annot.Time]string)}
}

// id returns the slot identifier for the given time, registering a new
// slot on first use. Slot values are whole milliseconds; fractions of a
// millisecond are truncated.
func (s *slotTable) id(at annot.Time) string {
	if id, ok := s.ids[at]; ok {
		return id
	}
	id := fmt.Sprintf("ts%d", len(s.slots)+1)
	s.ids[at] = id
	s.slots = append(s.slots, eafTimeSlot{ID: id, Value: int64(at * 1000)})
	return id
}

// ExportOptions control Export.
type ExportOptions struct {
	// IncludeEmpty emits annotations for empty intervals as well. By
	// default only labeled intervals are written; Import restores the
	// dropped empty intervals as gap fillers.
	IncludeEmpty bool
}

// Export serializes the grid as an EAF 2.7 annotation document. The grid
// must validate and may contain interval tiers only; a point tier fails
// with an UnsupportedError.
func Export(g *annot.Grid, opts ExportOptions) ([]byte, error) {
	const op = "eaf export"
	if err := g.Validate(); err != nil {
		return nil, errors.Wrap(err, op)
	}

	slots := newSlotTable()
	var tiers []eafTier
	nextID := 1
	for t := range g.Tiers() {
		it, ok := t.(*annot.IntervalTier)
		if !ok {
			return nil, errors.NewUnsupported("eaf point tiers",
				fmt.Sprintf("tier %q holds points; EAF export writes alignable interval annotations only", t.Name()))
		}
		tier := eafTier{Locale: "en", TypeRef: linguisticType, ID: it.Name()}
		for iv := range it.Intervals() {
			if iv.Text == "" && !opts.IncludeEmpty {
				continue
			}
			tier.Annotations = append(tier.Annotations, eafAnnotation{
				Alignable: eafAlignable{
					ID:    fmt.Sprintf("a%d", nextID),
					Ref1:  slots.id(iv.Start),
					Ref2:  slots.id(iv.End),
					Value: iv.Text,
				},
			})
			nextID++
		}
		tiers = append(tiers, tier)
	}

	doc := eafDocument{
		Author:         author,
		Date:           time.Now().UTC().Format("2006-01-02T15:04:05+00:00"),
		Format:         formatVersion,
		Version:        formatVersion,
		XsiNamespace:   xsiNamespace,
		SchemaLocation: schemaLocation,
		Header: eafHeader{
			TimeUnits:  "milliseconds",
			Properties: []eafProperty{{Name: "lastUsedAnnotationId", Value: "0"}},
		},
		TimeOrder:       eafTimeOrder{Slots: slots.slots},
		Tiers:           tiers,
		LinguisticTypes: []eafLinguisticType{{ID: linguisticType, TimeAlignable: true}},
		Locales:         []eafLocale{{CountryCode: "US", LanguageCode: "en"}},
	}

	out, err := xml.MarshalIndent(doc, "", "    ")
	if err != nil {
		return nil, errors.Wrap(err, op)
	}
	return append([]byte(xml.Header), append(out, '\n')...), nil
}
