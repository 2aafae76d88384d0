package services

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"filevault/database"
	"filevault/models"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Scorer computes a relevance score for one result. It is a strategy so the
// additive heuristic can be swapped for a real text index without touching
// the pagination or highlighting contract.
type Scorer interface {
	Score(query string, file *models.File) int
}

// AdditiveScorer is the default heuristic: fixed weights for a query
// substring in the display name, the description, and any tag name.
type AdditiveScorer struct {
	NameWeight        int
	DescriptionWeight int
	TagWeight         int
}

func NewAdditiveScorer() *AdditiveScorer {
	return &AdditiveScorer{
		NameWeight:        10,
		DescriptionWeight: 5,
		TagWeight:         3,
	}
}

func (s *AdditiveScorer) Score(query string, file *models.File) int {
	if query == "" {
		return 0
	}
	q := strings.ToLower(query)

	score := 0
	if strings.Contains(strings.ToLower(file.OriginalName), q) {
		score += s.NameWeight
	}
	if strings.Contains(strings.ToLower(file.Description), q) {
		score += s.DescriptionWeight
	}
	for _, tag := range file.Tags {
		if strings.Contains(strings.ToLower(tag), q) {
			score += s.TagWeight
			break
		}
	}
	return score
}

type SearchService struct {
	fileService       *FileService
	historyCollection *mongo.Collection
	scorer            Scorer
	logger            *logrus.Logger
}

func NewSearchService(fileService *FileService) *SearchService {
	return &SearchService{
		fileService:       fileService,
		historyCollection: database.GetCollection(database.SearchHistoryCollection),
		scorer:            NewAdditiveScorer(),
		logger:            logrus.StandardLogger(),
	}
}

// SetScorer swaps the ranking strategy.
func (ss *SearchService) SetScorer(scorer Scorer) {
	ss.scorer = scorer
}

// Search runs the faceted query, ranks and highlights the page, and records
// the query in the user's search history.
//
// Relevance sorting happens after the page fetch, so it orders results within
// the current page only; the store is queried in a stable secondary order
// (created_at desc, name asc).
func (ss *SearchService) Search(userID primitive.ObjectID, query string, page, limit int, filters *FileFilters) ([]models.SearchResult, int, error) {
	filters.Search = query
	filters.WideSearch = true

	sortByRelevance := filters.SortBy == "relevance"
	if sortByRelevance {
		filters.SortBy = "created_at"
		filters.SortOrder = "desc"
	}

	views, total, err := ss.fileService.GetUserFiles(userID, page, limit, filters)
	if err != nil {
		return nil, 0, err
	}

	results := make([]models.SearchResult, 0, len(views))
	for i := range views {
		results = append(results, models.SearchResult{
			FileView:               views[i],
			RelevanceScore:         ss.scorer.Score(query, &views[i].File),
			HighlightedName:        HighlightTerms(views[i].OriginalName, query),
			HighlightedDescription: HighlightTerms(views[i].Description, query),
		})
	}

	if sortByRelevance {
		rankResults(results)
	}

	if query != "" {
		ss.recordHistory(userID, query, filters, total)
	}

	return results, total, nil
}

// rankResults orders one fetched page by relevance score, highest first.
// The sort is stable, so equal scores keep their fetch order.
func rankResults(results []models.SearchResult) {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].RelevanceScore > results[j].RelevanceScore
	})
}

// GetHistory returns the user's recent searches, newest first.
func (ss *SearchService) GetHistory(userID primitive.ObjectID, limit int) ([]models.SearchHistory, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if limit < 1 || limit > 100 {
		limit = 20
	}

	cursor, err := ss.historyCollection.Find(ctx,
		bson.M{"user_id": userID},
		options.Find().
			SetSort(bson.M{"created_at": -1}).
			SetLimit(int64(limit)),
	)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var history []models.SearchHistory
	if err = cursor.All(ctx, &history); err != nil {
		return nil, err
	}

	return history, nil
}

// recordHistory persists one history entry. Failures are logged and
// swallowed; history must never break a search.
func (ss *SearchService) recordHistory(userID primitive.ObjectID, query string, filters *FileFilters, resultCount int) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	serialized, err := json.Marshal(map[string]interface{}{
		"folder_id":  filters.FolderID,
		"type":       filters.FileType,
		"tags":       filters.Tags,
		"min_size":   filters.MinSize,
		"max_size":   filters.MaxSize,
		"start_date": filters.StartDate,
		"end_date":   filters.EndDate,
	})
	if err != nil {
		serialized = []byte("{}")
	}

	entry := &models.SearchHistory{
		ID:          primitive.NewObjectID(),
		UserID:      userID,
		Query:       query,
		Filters:     string(serialized),
		ResultCount: resultCount,
		CreatedAt:   time.Now(),
	}

	if _, err := ss.historyCollection.InsertOne(ctx, entry); err != nil {
		ss.logger.WithError(err).WithField("user_id", userID.Hex()).
			Warn("failed to record search history")
	}
}

// HighlightTerms wraps each occurrence of each whitespace-split query term
// in <mark> markers, case-insensitively, preserving the original casing of
// the matched text.
func HighlightTerms(text, query string) string {
	if text == "" || strings.TrimSpace(query) == "" {
		return text
	}

	result := text
	for _, term := range strings.Fields(query) {
		result = highlightTerm(result, term)
	}
	return result
}

func highlightTerm(text, term string) string {
	var b strings.Builder
	rest := text

	for {
		idx, n := foldIndex(rest, term)
		if idx < 0 {
			b.WriteString(rest)
			break
		}
		b.WriteString(rest[:idx])
		b.WriteString("<mark>")
		b.WriteString(rest[idx : idx+n])
		b.WriteString("</mark>")
		rest = rest[idx+n:]
	}

	return b.String()
}

// foldIndex locates the first case-insensitive occurrence of term in s and
// returns its byte offset and byte length there. Offsets are computed on
// rune boundaries of s itself; case folding can change a rune's byte width,
// so indexes found in a lowercased copy must never be applied to s.
func foldIndex(s, term string) (int, int) {
	termLen := utf8.RuneCountInString(term)
	if termLen == 0 {
		return -1, 0
	}

	for start := range s {
		end := start
		count := 0
		for end < len(s) && count < termLen {
			_, size := utf8.DecodeRuneInString(s[end:])
			end += size
			count++
		}
		if count < termLen {
			break
		}
		if strings.EqualFold(s[start:end], term) {
			return start, end - start
		}
	}

	return -1, 0
}
