package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/shankarium/plm/internal/logging"
	"github.com/shankarium/plm/internal/models"
	"github.com/shankarium/plm/internal/storage"
)

// fieldError reports a numeric form field that could not be parsed
type fieldError struct {
	Field string
	Value string
	Kind  string
}

func (e *fieldError) Error() string {
	return fmt.Sprintf("%s must be %s, got %q", e.Field, e.Kind, e.Value)
}

// optionalFloat parses a form value; empty input is NULL
func optionalFloat(field, raw string) (*float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, &fieldError{Field: field, Value: raw, Kind: "a number"}
	}
	return &v, nil
}

// optionalInt parses a whole-number form value; empty input is NULL
func optionalInt(field, raw string) (*int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, &fieldError{Field: field, Value: raw, Kind: "a whole number"}
	}
	return &v, nil
}

// badForm answers 400 for malformed numeric input
func badForm(c *gin.Context, err error) {
	var fe *fieldError
	if errors.As(err, &fe) {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "Invalid form input",
			Message: fe.Error(),
		})
		return
	}
	c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Error:   "Invalid form input",
		Message: err.Error(),
	})
}

// pathID parses a numeric route parameter. Non-numeric ids do not match any record,
// so the caller answers 404.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error:   "Not found",
			Message: fmt.Sprintf("invalid %s %q", name, c.Param(name)),
		})
		return 0, false
	}
	return id, true
}

// briefFromForm converts the submitted brief form
func briefFromForm(f *models.BriefForm) (*models.Brief, error) {
	b := &models.Brief{
		ProjectNo:           f.ProjectNo,
		Season:              f.Season,
		Brand:               f.Brand,
		Subcategory:         f.Subcategory,
		Design:              f.Design,
		MarketFocus:         f.MarketFocus,
		ColorRequirements:   f.ColorRequirements,
		PMGeneralRemarks:    f.PMGeneralRemarks,
		PMReferenceImageURL: f.PMReferenceImageURL,
	}
	var err error
	if b.TargetMRP, err = optionalFloat("target_mrp", f.TargetMRP); err != nil {
		return nil, err
	}
	if b.ExpectedSalesQty, err = optionalInt("expected_sales_qty", f.ExpectedSalesQty); err != nil {
		return nil, err
	}
	if b.SampleAdaptationPct, err = optionalInt("sample_adaptation_pct", f.SampleAdaptationPct); err != nil {
		return nil, err
	}
	inputs := f.RegionInputs()
	for i, dst := range b.RegionQuantities.Fields() {
		if *dst, err = optionalInt("stateqty_"+models.RegionCodes[i], inputs[i]); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// conceptFromForm converts the submitted concept form
func conceptFromForm(briefID int64, f *models.ConceptForm) (*models.Concept, error) {
	mrp, err := optionalFloat("proposed_mrp", f.ProposedMRP)
	if err != nil {
		return nil, err
	}
	return &models.Concept{
		BriefID:         briefID,
		NDNo:            f.NDNo,
		ProposedMRP:     mrp,
		UpperMaterial:   f.UpperMaterial,
		Lining:          f.Lining,
		Insole:          f.Insole,
		Outsole:         f.Outsole,
		Construction:    f.Construction,
		SizeCurve:       f.SizeCurve,
		Colorways:       f.Colorways,
		ArticleImageURL: f.ArticleImageURL,
		BrandSuggestion: f.BrandSuggestion,
		NPDRemarks:      f.NPDRemarks,
	}, nil
}

// salesFromForm converts the submitted finalize form
func salesFromForm(conceptID int64, f *models.FinalizeForm) (*models.SalesInfo, error) {
	margin, err := optionalFloat("margin_pct", f.MarginPct)
	if err != nil {
		return nil, err
	}
	return &models.SalesInfo{
		ConceptID:                 conceptID,
		MarginPct:                 margin,
		SellingStory:              f.SellingStory,
		SalesRemarks:              f.SalesRemarks,
		FinalPresentationImageURL: f.FinalPresentationImageURL,
	}, nil
}

// attachment stores the optional image in field and returns its reference. When no
// file was sent, or its type is not allowed, fallback (the text URL field) is returned
// unchanged and nothing is written.
func (h *Handler) attachment(c *gin.Context, field, fallback string) (string, error) {
	fh, err := c.FormFile(field)
	if err != nil || fh == nil || fh.Filename == "" {
		return fallback, nil
	}

	name, err := storage.StoredName(fh.Filename, time.Now())
	if errors.Is(err, storage.ErrDisallowedExtension) {
		addFlash(c, models.FlashWarning, "Unsupported file type.")
		return fallback, nil
	}
	if err != nil {
		return "", err
	}

	file, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open upload: %w", err)
	}
	defer file.Close()

	ref, err := h.uploads.Save(c.Request.Context(), name, fh.Header.Get("Content-Type"), file)
	if err != nil {
		return "", err
	}
	logging.LogKV("info", "upload stored", map[string]interface{}{
		"field":      field,
		"ref":        ref,
		"bytes":      fh.Size,
		"request_id": c.GetString(logging.RequestIDKey),
	})
	return ref, nil
}

// discardUpload removes a file attachment stored earlier in a request whose record
// write then failed. ref equal to fallback means nothing was stored.
func (h *Handler) discardUpload(c *gin.Context, ref, fallback string) {
	if ref == "" || ref == fallback {
		return
	}
	if err := h.uploads.Remove(c.Request.Context(), ref); err != nil {
		logging.LogKV("warn", "upload left behind", map[string]interface{}{
			"ref":        ref,
			"request_id": c.GetString(logging.RequestIDKey),
			"error":      err.Error(),
		})
	}
}
