package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/emrgen/taxonomy/internal/cache"
	"github.com/emrgen/taxonomy/internal/compress"
	"github.com/emrgen/taxonomy/internal/htmltext"
	"github.com/emrgen/taxonomy/internal/model"
	"github.com/emrgen/taxonomy/internal/queue"
	"github.com/emrgen/taxonomy/internal/slug"
	"github.com/emrgen/taxonomy/internal/store"
	"github.com/microcosm-cc/bluemonday"
	"github.com/sirupsen/logrus"
)

// VersionLatest is the sentinel accepted in place of a numeric version.
const VersionLatest = "latest"

const shortDescriptionRunes = 200

// NewEntryService creates a new EntryService. cache and queue may be nil
// when the deployment runs without redis or a broker.
func NewEntryService(codec compress.Compress, store store.Store, cache cache.EntryCache, queue queue.EntryQueue) *EntryService {
	return &EntryService{
		codec:     codec,
		store:     store,
		cache:     cache,
		queue:     queue,
		sanitizer: bluemonday.UGCPolicy(),
	}
}

// EntryService owns the versioned write path and the version read path of
// taxon entries. Every save snapshots the prior state inside the same store
// transaction that applies the update.
type EntryService struct {
	codec     compress.Compress
	store     store.Store
	cache     cache.EntryCache
	queue     queue.EntryQueue
	sanitizer *bluemonday.Policy
}

type CreateEntryRequest struct {
	TaxonID          uint   `json:"taxonId"`
	Title            string `json:"title"`
	SortOrder        int    `json:"sortOrder"`
	ContentHTML      string `json:"contentHtml"`
	ShortDescription string `json:"shortDescription"`
	OfficialNameTh   string `json:"officialNameTh"`
	ScientificName   string `json:"scientificName"`
	Genus            string `json:"genus"`
	Species          string `json:"species"`
	Family           string `json:"family"`
	Synonyms         string `json:"synonyms"`
	OtherNames       string `json:"otherNames"`
	AuthorName       string `json:"authorName"`
	AuthorPeriod     string `json:"authorPeriod"`
	IsPublished      bool   `json:"isPublished"`
	ChangedBy        string `json:"changedBy"`
}

func (r *CreateEntryRequest) Validate() error {
	fields := make(map[string]string)
	if strings.TrimSpace(r.Title) == "" {
		fields["title"] = "must not be empty"
	}
	if r.TaxonID == 0 {
		fields["taxonId"] = "must reference a taxon"
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// UpdateEntryRequest carries the fields a caller wants to overwrite. Nil
// pointers leave the stored value untouched. BaseVersion is the version the
// caller edited from and must equal the live version.
type UpdateEntryRequest struct {
	BaseVersion      int64   `json:"baseVersion"`
	Title            *string `json:"title,omitempty"`
	SortOrder        *int    `json:"sortOrder,omitempty"`
	ContentHTML      *string `json:"contentHtml,omitempty"`
	ShortDescription *string `json:"shortDescription,omitempty"`
	OfficialNameTh   *string `json:"officialNameTh,omitempty"`
	ScientificName   *string `json:"scientificName,omitempty"`
	Genus            *string `json:"genus,omitempty"`
	Species          *string `json:"species,omitempty"`
	Family           *string `json:"family,omitempty"`
	Synonyms         *string `json:"synonyms,omitempty"`
	OtherNames       *string `json:"otherNames,omitempty"`
	AuthorName       *string `json:"authorName,omitempty"`
	AuthorPeriod     *string `json:"authorPeriod,omitempty"`
	IsPublished      *bool   `json:"isPublished,omitempty"`
	ChangedBy        string  `json:"changedBy,omitempty"`
}

func (r *UpdateEntryRequest) Validate() error {
	fields := make(map[string]string)
	if r.BaseVersion < 1 {
		fields["baseVersion"] = "must be the version the edit was based on"
	}
	if r.Title != nil && strings.TrimSpace(*r.Title) == "" {
		fields["title"] = "must not be empty"
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// EntryVersion is one row of the version-switcher list.
type EntryVersion struct {
	Version   int64     `json:"version"`
	ChangedAt time.Time `json:"changedAt"`
	ChangedBy string    `json:"changedBy,omitempty"`
	Live      bool      `json:"live"`
}

// CreateEntry creates a new entry at version 1. No snapshot exists for the
// initial state until the first edit supersedes it.
func (s *EntryService) CreateEntry(ctx context.Context, request *CreateEntryRequest) (*model.TaxonEntry, error) {
	if err := request.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.store.GetTaxon(ctx, request.TaxonID); err != nil {
		return nil, err
	}

	entry := &model.TaxonEntry{
		TaxonID:          request.TaxonID,
		Title:            request.Title,
		Slug:             slug.From(request.Title),
		SortOrder:        request.SortOrder,
		ShortDescription: request.ShortDescription,
		OfficialNameTh:   request.OfficialNameTh,
		ScientificName:   request.ScientificName,
		Genus:            request.Genus,
		Species:          request.Species,
		Family:           request.Family,
		Synonyms:         request.Synonyms,
		OtherNames:       request.OtherNames,
		AuthorName:       request.AuthorName,
		AuthorPeriod:     request.AuthorPeriod,
		Version:          1,
		IsPublished:      request.IsPublished,
	}

	if err := s.setContent(entry, request.ContentHTML); err != nil {
		return nil, err
	}
	if entry.ShortDescription == "" && entry.ContentText != "" {
		entry.ShortDescription = htmltext.FirstParagraph(s.sanitizer.Sanitize(request.ContentHTML), shortDescriptionRunes)
	}

	if err := s.store.CreateEntry(ctx, entry); err != nil {
		return nil, err
	}

	s.primeCache(ctx, entry)
	s.publish(ctx, entry, queue.ActionCreated, request.ChangedBy)

	return decodeContent(entry)
}

// UpdateEntry performs the versioned save: inside one transaction the
// pre-update state is copied into a snapshot tagged with the pre-increment
// version, the fields are overwritten, and the version advances by exactly 1.
// A stale BaseVersion rejects the whole save with ErrVersionConflict before
// any snapshot is written.
func (s *EntryService) UpdateEntry(ctx context.Context, id uint, request *UpdateEntryRequest) (*model.TaxonEntry, error) {
	return s.save(ctx, id, request, queue.ActionUpdated)
}

func (s *EntryService) save(ctx context.Context, id uint, request *UpdateEntryRequest, action string) (*model.TaxonEntry, error) {
	if err := request.Validate(); err != nil {
		return nil, err
	}

	var updated *model.TaxonEntry
	err := s.store.Transaction(ctx, func(tx store.Store) error {
		entry, err := tx.GetEntry(ctx, id)
		if err != nil {
			return err
		}

		if request.BaseVersion != entry.Version {
			logrus.Warnf("version conflict on entry %d: live version %d, base version %d", id, entry.Version, request.BaseVersion)
			return ErrVersionConflict
		}

		if err := tx.CreateEntrySnapshot(ctx, entry.Snapshot(request.ChangedBy)); err != nil {
			// a racing save read the same live version and committed
			// first, its snapshot owns this version now
			if errors.Is(err, store.ErrSnapshotExists) {
				logrus.Warnf("version conflict on entry %d: version %d already snapshotted by a concurrent save", id, entry.Version)
				return ErrVersionConflict
			}
			return err
		}

		if err := s.applyFields(entry, request); err != nil {
			return err
		}
		entry.Version = entry.Version + 1

		logrus.Infof("updating entry %d to version %d", entry.ID, entry.Version)
		updated = entry
		return tx.UpdateEntry(ctx, entry)
	})
	if err != nil {
		return nil, err
	}

	s.primeCache(ctx, updated)
	s.publish(ctx, updated, action, request.ChangedBy)

	return decodeContent(updated)
}

func (s *EntryService) applyFields(entry *model.TaxonEntry, request *UpdateEntryRequest) error {
	if request.Title != nil {
		entry.Title = *request.Title
		entry.Slug = slug.From(entry.Title)
	}
	if request.SortOrder != nil {
		entry.SortOrder = *request.SortOrder
	}
	if request.ContentHTML != nil {
		if err := s.setContent(entry, *request.ContentHTML); err != nil {
			return err
		}
		if request.ShortDescription == nil && entry.ShortDescription == "" {
			entry.ShortDescription = htmltext.FirstParagraph(s.sanitizer.Sanitize(*request.ContentHTML), shortDescriptionRunes)
		}
	}
	if request.ShortDescription != nil {
		entry.ShortDescription = *request.ShortDescription
	}
	if request.OfficialNameTh != nil {
		entry.OfficialNameTh = *request.OfficialNameTh
	}
	if request.ScientificName != nil {
		entry.ScientificName = *request.ScientificName
	}
	if request.Genus != nil {
		entry.Genus = *request.Genus
	}
	if request.Species != nil {
		entry.Species = *request.Species
	}
	if request.Family != nil {
		entry.Family = *request.Family
	}
	if request.Synonyms != nil {
		entry.Synonyms = *request.Synonyms
	}
	if request.OtherNames != nil {
		entry.OtherNames = *request.OtherNames
	}
	if request.AuthorName != nil {
		entry.AuthorName = *request.AuthorName
	}
	if request.AuthorPeriod != nil {
		entry.AuthorPeriod = *request.AuthorPeriod
	}
	if request.IsPublished != nil {
		entry.IsPublished = *request.IsPublished
	}
	return nil
}

// setContent sanitizes the rich-text body, derives the plain text the search
// matches against, and stores the body encoded with the configured codec.
func (s *EntryService) setContent(entry *model.TaxonEntry, contentHTML string) error {
	sanitized := s.sanitizer.Sanitize(contentHTML)
	entry.ContentText = htmltext.StripTags(sanitized)

	encoded, err := s.codec.Encode([]byte(sanitized))
	if err != nil {
		return err
	}
	entry.ContentHTML = string(encoded)
	entry.Compression = s.codec.Name()

	return nil
}

// GetEntry retrieves the live entry, consulting the cache first.
func (s *EntryService) GetEntry(ctx context.Context, id uint) (*model.TaxonEntry, error) {
	if s.cache != nil {
		cached, err := s.cache.GetEntry(ctx, id)
		if err != nil {
			logrus.Errorf("entry cache read failed for %d: %v", id, err)
		}
		if cached != nil {
			return decodeContent(cached)
		}
	}

	entry, err := s.store.GetEntry(ctx, id)
	if err != nil {
		return nil, err
	}

	s.primeCache(ctx, entry)

	return decodeContent(entry)
}

// GetEntryVersion retrieves the entry as of the named version. The live
// version (or the "latest" sentinel) is served from the live row, anything
// else from its snapshot. Reads never mutate live state.
func (s *EntryService) GetEntryVersion(ctx context.Context, id uint, version string) (*model.TaxonEntry, error) {
	if version == VersionLatest {
		return s.GetEntry(ctx, id)
	}

	v, err := strconv.ParseInt(version, 10, 64)
	if err != nil || v < 1 {
		return nil, invalid("version", "must be a positive integer or \"latest\"")
	}

	entry, err := s.store.GetEntry(ctx, id)
	if err != nil {
		return nil, err
	}

	if v == entry.Version {
		return decodeContent(entry)
	}

	snapshot, err := s.store.GetEntrySnapshot(ctx, id, v)
	if err != nil {
		return nil, err
	}

	return decodeContent(snapshot.IntoEntry())
}

// ListEntryVersions returns every known version of the entry, newest first:
// the live version followed by all snapshot versions.
func (s *EntryService) ListEntryVersions(ctx context.Context, id uint) ([]*EntryVersion, error) {
	entry, err := s.store.GetEntry(ctx, id)
	if err != nil {
		return nil, err
	}

	snapshots, err := s.store.ListEntrySnapshots(ctx, id)
	if err != nil {
		return nil, err
	}

	versions := make([]*EntryVersion, 0, len(snapshots)+1)
	versions = append(versions, &EntryVersion{
		Version:   entry.Version,
		ChangedAt: entry.UpdatedAt,
		Live:      true,
	})
	for _, snapshot := range snapshots {
		versions = append(versions, &EntryVersion{
			Version:   snapshot.Version,
			ChangedAt: snapshot.CreatedAt,
			ChangedBy: snapshot.ChangedBy,
		})
	}

	return versions, nil
}

// RestoreEntryVersion re-applies a snapshot's fields through the normal
// versioned save, so the restore itself becomes a new version and history
// stays linear. The caller still supplies the base version it sees as live.
func (s *EntryService) RestoreEntryVersion(ctx context.Context, id uint, version, baseVersion int64, changedBy string) (*model.TaxonEntry, error) {
	snapshot, err := s.store.GetEntrySnapshot(ctx, id, version)
	if err != nil {
		return nil, err
	}

	restored, err := decodeContent(snapshot.IntoEntry())
	if err != nil {
		return nil, err
	}

	request := &UpdateEntryRequest{
		BaseVersion:      baseVersion,
		Title:            &restored.Title,
		SortOrder:        &restored.SortOrder,
		ContentHTML:      &restored.ContentHTML,
		ShortDescription: &restored.ShortDescription,
		OfficialNameTh:   &restored.OfficialNameTh,
		ScientificName:   &restored.ScientificName,
		Genus:            &restored.Genus,
		Species:          &restored.Species,
		Family:           &restored.Family,
		Synonyms:         &restored.Synonyms,
		OtherNames:       &restored.OtherNames,
		AuthorName:       &restored.AuthorName,
		AuthorPeriod:     &restored.AuthorPeriod,
		IsPublished:      &restored.IsPublished,
		ChangedBy:        changedBy,
	}

	return s.save(ctx, id, request, queue.ActionRestored)
}

// DeleteEntry soft deletes an entry. Its snapshots stay in place.
func (s *EntryService) DeleteEntry(ctx context.Context, id uint) error {
	if err := s.store.DeleteEntry(ctx, id); err != nil {
		return err
	}

	s.dropCache(ctx, id)
	s.publishDeleted(ctx, id)

	return nil
}

// EraseEntry hard deletes an entry.
func (s *EntryService) EraseEntry(ctx context.Context, id uint) error {
	if err := s.store.EraseEntry(ctx, id); err != nil {
		return err
	}

	s.dropCache(ctx, id)
	s.publishDeleted(ctx, id)

	return nil
}

// primeCache writes the entry through to the cache unless the cache already
// holds the same or a newer version. A read that loaded its row just before
// a concurrent save committed must not clobber the winner's primed value.
func (s *EntryService) primeCache(ctx context.Context, entry *model.TaxonEntry) {
	if s.cache == nil {
		return
	}

	cached, err := s.cache.GetEntryVersion(ctx, entry.ID)
	if err != nil {
		logrus.Errorf("entry cache version read failed for %d: %v", entry.ID, err)
		return
	}
	if cached >= entry.Version {
		return
	}

	if err := s.cache.SetEntry(ctx, entry); err != nil {
		logrus.Errorf("entry cache write failed for %d: %v", entry.ID, err)
	}
}

func (s *EntryService) dropCache(ctx context.Context, id uint) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteEntry(ctx, id); err != nil {
		logrus.Errorf("entry cache delete failed for %d: %v", id, err)
	}
}

func (s *EntryService) publish(ctx context.Context, entry *model.TaxonEntry, action, changedBy string) {
	if s.queue == nil {
		return
	}
	err := s.queue.PublishChange(ctx, &queue.EntryChange{
		EntryID:   entry.ID,
		Version:   entry.Version,
		Action:    action,
		ChangedBy: changedBy,
		ChangedAt: time.Now(),
	})
	if err != nil {
		logrus.Errorf("publishing entry change for %d: %v", entry.ID, err)
	}
}

func (s *EntryService) publishDeleted(ctx context.Context, id uint) {
	if s.queue == nil {
		return
	}
	err := s.queue.PublishChange(ctx, &queue.EntryChange{
		EntryID:   id,
		Action:    queue.ActionDeleted,
		ChangedAt: time.Now(),
	})
	if err != nil {
		logrus.Errorf("publishing entry delete for %d: %v", id, err)
	}
}

// decodeContent returns a copy of the entry with ContentHTML decoded with
// the codec recorded on the row.
func decodeContent(entry *model.TaxonEntry) (*model.TaxonEntry, error) {
	codec := compress.ForName(entry.Compression)

	data, err := codec.Decode([]byte(entry.ContentHTML))
	if err != nil {
		return nil, err
	}

	decoded := *entry
	decoded.ContentHTML = string(data)
	decoded.Compression = ""
	return &decoded, nil
}
