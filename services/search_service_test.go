package services

import (
	"testing"

	"filevault/models"

	"github.com/stretchr/testify/assert"
)

func TestAdditiveScorerWeights(t *testing.T) {
	scorer := NewAdditiveScorer()

	file := &models.File{
		OriginalName: "Quarterly Report.pdf",
		Description:  "Q3 sales report for the board",
		Tags:         []string{"finance", "report"},
	}

	// All three fields match.
	assert.Equal(t, 18, scorer.Score("report", file))

	// Name only.
	assert.Equal(t, 10, scorer.Score("quarterly", file))

	// Description only.
	assert.Equal(t, 5, scorer.Score("board", file))

	// Tag only; multiple matching tags still count once.
	assert.Equal(t, 3, scorer.Score("finance", file))

	assert.Equal(t, 0, scorer.Score("missing", file))
	assert.Equal(t, 0, scorer.Score("", file))
}

func TestAdditiveScorerCaseInsensitive(t *testing.T) {
	scorer := NewAdditiveScorer()

	file := &models.File{OriginalName: "HOLIDAY-photos.zip"}
	assert.Equal(t, 10, scorer.Score("Holiday", file))
}

func TestHighlightTerms(t *testing.T) {
	got := HighlightTerms("Quarterly Report", "report")
	assert.Equal(t, "Quarterly <mark>Report</mark>", got)

	// Original casing of the match survives.
	got = HighlightTerms("REPORT report Report", "report")
	assert.Equal(t, "<mark>REPORT</mark> <mark>report</mark> <mark>Report</mark>", got)

	// Each whitespace-split term highlights independently.
	got = HighlightTerms("annual sales report", "sales report")
	assert.Equal(t, "annual <mark>sales</mark> <mark>report</mark>", got)

	// No match leaves the text alone.
	assert.Equal(t, "notes.txt", HighlightTerms("notes.txt", "report"))
	assert.Equal(t, "notes.txt", HighlightTerms("notes.txt", ""))
	assert.Equal(t, "", HighlightTerms("", "report"))
}

func TestHighlightTermsMultiByte(t *testing.T) {
	// Runes whose lowercase form has a different byte width must not shift
	// the match offsets. U+023A lowercases from 2 bytes to 3.
	got := HighlightTerms("ȺȺȺȺȺfoo", "foo")
	assert.Equal(t, "ȺȺȺȺȺ<mark>foo</mark>", got)

	// Non-ASCII text in both match and surroundings.
	got = HighlightTerms("Résumé Café.pdf", "café")
	assert.Equal(t, "Résumé <mark>Café</mark>.pdf", got)

	// A multi-byte term against multi-byte text.
	got = HighlightTerms("ÜBER über", "über")
	assert.Equal(t, "<mark>ÜBER</mark> <mark>über</mark>", got)
}

func TestRankResultsOrdersPageByScore(t *testing.T) {
	scorer := NewAdditiveScorer()

	files := []models.File{
		{OriginalName: "summary.txt", Tags: []string{"invoice"}},
		{OriginalName: "notes.txt"},
		{OriginalName: "invoice_2024.pdf"},
	}

	results := make([]models.SearchResult, 0, len(files))
	for i := range files {
		results = append(results, models.SearchResult{
			FileView:       models.NewFileView(files[i]),
			RelevanceScore: scorer.Score("invoice", &files[i]),
		})
	}

	rankResults(results)

	// Name match outranks tag match; no match sinks to the bottom.
	assert.Equal(t, "invoice_2024.pdf", results[0].OriginalName)
	assert.Equal(t, 10, results[0].RelevanceScore)
	assert.Equal(t, "summary.txt", results[1].OriginalName)
	assert.Equal(t, 3, results[1].RelevanceScore)
	assert.Equal(t, "notes.txt", results[2].OriginalName)
}

func TestRankResultsStableOnTies(t *testing.T) {
	results := []models.SearchResult{
		{FileView: models.FileView{File: models.File{OriginalName: "a.txt"}}, RelevanceScore: 3},
		{FileView: models.FileView{File: models.File{OriginalName: "b.txt"}}, RelevanceScore: 3},
		{FileView: models.FileView{File: models.File{OriginalName: "c.txt"}}, RelevanceScore: 10},
		{FileView: models.FileView{File: models.File{OriginalName: "d.txt"}}, RelevanceScore: 3},
	}

	rankResults(results)

	assert.Equal(t, "c.txt", results[0].OriginalName)
	// Tied scores keep their fetch order.
	assert.Equal(t, "a.txt", results[1].OriginalName)
	assert.Equal(t, "b.txt", results[2].OriginalName)
	assert.Equal(t, "d.txt", results[3].OriginalName)
}

func TestSetScorerSwapsStrategy(t *testing.T) {
	ss := &SearchService{scorer: NewAdditiveScorer()}
	ss.SetScorer(&constantScorer{value: 42})

	assert.Equal(t, 42, ss.scorer.Score("anything", &models.File{}))
}

type constantScorer struct {
	value int
}

func (s *constantScorer) Score(query string, file *models.File) int {
	return s.value
}
