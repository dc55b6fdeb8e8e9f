// Package catalog holds the static checklist configuration: which document
// types each folder category must contain, each flagged required or optional.
// It is immutable after construction and safe for concurrent reads.
package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/obralink/compliance-engine/internal/core/domain"
)

// Checklist is the ordered document-type list for one folder category.
type Checklist struct {
	DocCategory domain.DocumentCategory
	Entries     []domain.ChecklistEntry

	// AllowOther admits the free-form "other" type as one extra optional
	// slot. Like every checklist slot it holds a single attachment: a later
	// upload of type "other" replaces the earlier one.
	AllowOther bool
}

type Catalog struct {
	checklists map[domain.FolderCategory]Checklist
}

// Default returns the built-in catalog. Categories may be replaced wholesale
// through a YAML override file (see Load).
func Default() *Catalog {
	return &Catalog{checklists: map[domain.FolderCategory]Checklist{
		domain.FolderCompany: {
			DocCategory: domain.CategoryCompany,
			AllowOther:  true,
			Entries: []domain.ChecklistEntry{
				{Type: domain.TypeTaxCertificate, Required: true},
				{Type: domain.TypeSocialSecurityCertificate, Required: true},
				{Type: domain.TypeLiabilityInsurance, Required: true},
				{Type: domain.TypeAccidentInsurance, Required: false},
			},
		},
		domain.FolderSafetyAndHealth: {
			DocCategory: domain.CategorySafetyAndHealth,
			Entries: []domain.ChecklistEntry{
				{Type: domain.TypeRiskAssessment, Required: true},
				{Type: domain.TypePreventionPlan, Required: true},
				{Type: domain.TypeEmergencyPlan, Required: false},
			},
		},
		domain.FolderEnvironmental: {
			DocCategory: domain.CategoryEnvironmental,
			Entries: []domain.ChecklistEntry{
				{Type: domain.TypeEnvironmentalPermit, Required: true},
				{Type: domain.TypeWastePlan, Required: true},
				{Type: domain.TypeEnvironmentalPolicy, Required: false},
			},
		},
		domain.FolderWorker: {
			DocCategory: domain.CategoryPersonnel,
			AllowOther:  true,
			Entries: []domain.ChecklistEntry{
				{Type: domain.TypeIDCard, Required: true},
				{Type: domain.TypeContract, Required: true},
				{Type: domain.TypeSocialSecurity, Required: true},
				{Type: domain.TypeMedicalExam, Required: true},
				{Type: domain.TypeTrainingCertificate, Required: true},
				{Type: domain.TypePPEReceipt, Required: false},
			},
		},
		domain.FolderVehicle: {
			DocCategory: domain.CategoryVehicles,
			Entries: []domain.ChecklistEntry{
				{Type: domain.TypeVehicleRegistration, Required: true},
				{Type: domain.TypeVehicleInsurance, Required: true},
				{Type: domain.TypeTechnicalInspection, Required: true},
				{Type: domain.TypeOperatorLicense, Required: false},
			},
		},
		domain.FolderWorkerLabor: {
			DocCategory: domain.CategoryPersonnel,
			Entries: []domain.ChecklistEntry{
				{Type: domain.TypePayroll, Required: true},
				{Type: domain.TypeSocialSecurityPayment, Required: true},
				{Type: domain.TypeAttendanceRecord, Required: false},
			},
		},
	}}
}

// Load builds the catalog from the defaults plus an optional YAML override
// file. An empty path returns the defaults unchanged.
func Load(path string) (*Catalog, error) {
	cat := Default()
	if path == "" {
		return cat, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}
	if err := cat.applyOverride(raw); err != nil {
		return nil, fmt.Errorf("parse catalog file %s: %w", path, err)
	}
	return cat, nil
}

type overrideFile struct {
	Categories map[string]overrideChecklist `yaml:"categories"`
}

type overrideChecklist struct {
	DocCategory string `yaml:"doc_category"`
	AllowOther  bool   `yaml:"allow_other"`
	Entries     []struct {
		Type     string `yaml:"type"`
		Required bool   `yaml:"required"`
	} `yaml:"entries"`
}

func (c *Catalog) applyOverride(raw []byte) error {
	var file overrideFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return err
	}

	for name, override := range file.Categories {
		category := domain.FolderCategory(name)
		base, ok := c.checklists[category]
		if !ok {
			return fmt.Errorf("unknown folder category %q", name)
		}
		if len(override.Entries) == 0 {
			return fmt.Errorf("category %q: override has no entries", name)
		}

		checklist := Checklist{
			DocCategory: base.DocCategory,
			AllowOther:  override.AllowOther,
		}
		if override.DocCategory != "" {
			checklist.DocCategory = domain.DocumentCategory(override.DocCategory)
		}
		for _, entry := range override.Entries {
			if entry.Type == "" {
				return fmt.Errorf("category %q: entry with empty type", name)
			}
			checklist.Entries = append(checklist.Entries, domain.ChecklistEntry{
				Type:     domain.DocumentType(entry.Type),
				Required: entry.Required,
			})
		}
		c.checklists[category] = checklist
	}
	return nil
}

// Checklist looks up the checklist for a folder category.
func (c *Catalog) Checklist(category domain.FolderCategory) (Checklist, bool) {
	checklist, ok := c.checklists[category]
	return checklist, ok
}

// MustChecklist is Checklist for callers that have already validated the
// category. An unknown category here is a programmer error, not a runtime
// condition to recover from.
func (c *Catalog) MustChecklist(category domain.FolderCategory) Checklist {
	checklist, ok := c.checklists[category]
	if !ok {
		panic(fmt.Sprintf("catalog: unknown folder category %q", category))
	}
	return checklist
}

// AllowsType reports whether a document type is a legal upload target for the
// category: a checklist slot, or the free-form "other" type where allowed.
func (c *Catalog) AllowsType(category domain.FolderCategory, docType domain.DocumentType) bool {
	checklist, ok := c.checklists[category]
	if !ok {
		return false
	}
	if docType == domain.TypeOther {
		return checklist.AllowOther
	}
	for _, entry := range checklist.Entries {
		if entry.Type == docType {
			return true
		}
	}
	return false
}
