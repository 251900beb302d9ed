package bleve

import (
	"strings"

	"github.com/blevesearch/bleve"
	"github.com/blevesearch/bleve/analysis/analyzer/simple"
	"github.com/blevesearch/bleve/analysis/lang/en"
	"github.com/blevesearch/bleve/mapping"
	"github.com/blevesearch/bleve/search/query"

	"github.com/bobinette/paperlog"
)

const paperType = "paper"

// PaperIndex is the full-text index over the title, the authors, the
// category and the note of the papers.
type PaperIndex struct {
	index bleve.Index
}

// Open opens the index stored at path, creating it when it does not
// exist.
func (s *PaperIndex) Open(path string) error {
	index, err := bleve.Open(path)
	if err == bleve.ErrorIndexPathDoesNotExist {
		index, err = bleve.New(path, indexMapping())
	}
	if err != nil {
		return err
	}

	s.index = index
	return nil
}

// OpenMemory creates an index that lives in memory only.
func (s *PaperIndex) OpenMemory() error {
	index, err := bleve.NewMemOnly(indexMapping())
	if err != nil {
		return err
	}

	s.index = index
	return nil
}

func (s *PaperIndex) Close() error {
	if s.index == nil {
		return nil
	}

	return s.index.Close()
}

func indexMapping() mapping.IndexMapping {
	english := bleve.NewTextFieldMapping()
	english.Analyzer = en.AnalyzerName

	names := bleve.NewTextFieldMapping()
	names.Analyzer = simple.Name

	paper := bleve.NewDocumentMapping()
	paper.AddFieldMappingsAt("title", english)
	paper.AddFieldMappingsAt("note", english)
	paper.AddFieldMappingsAt("authors", names)
	paper.AddFieldMappingsAt("category", names)

	m := bleve.NewIndexMapping()
	m.AddDocumentMapping(paperType, paper)
	m.DefaultType = paperType
	m.DefaultAnalyzer = simple.Name
	return m
}

func document(paper paperlog.Paper) map[string]interface{} {
	return map[string]interface{}{
		"title":    paper.Title,
		"authors":  paper.AuthorNames(),
		"category": paper.Category,
		"note":     paper.Note,
	}
}

func (s *PaperIndex) Index(paper paperlog.Paper) error {
	return s.index.Index(paper.ID, document(paper))
}

func (s *PaperIndex) Delete(id string) error {
	return s.index.Delete(id)
}

// Search returns the ids of the papers matching every word of q, as a
// prefix of a word of any indexed field. Ids are sorted.
func (s *PaperIndex) Search(q string) ([]string, error) {
	sq := s.searchWords(q)
	if sq == nil {
		return []string{}, nil
	}

	total, err := s.index.DocCount()
	if err != nil {
		return nil, err
	}

	searchRequest := bleve.NewSearchRequest(sq)
	searchRequest.SortBy([]string{"_id"})
	searchRequest.Size = int(total)

	searchResults, err := s.index.Search(searchRequest)
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(searchResults.Hits))
	for i, hit := range searchResults.Hits {
		ids[i] = hit.ID
	}
	return ids, nil
}

// Rebuild indexes papers and removes every other document from the index.
func (s *PaperIndex) Rebuild(papers []paperlog.Paper) error {
	total, err := s.index.DocCount()
	if err != nil {
		return err
	}

	keep := make(map[string]struct{}, len(papers))
	for _, p := range papers {
		keep[p.ID] = struct{}{}
	}

	batch := s.index.NewBatch()
	if total > 0 {
		all := bleve.NewSearchRequest(query.NewMatchAllQuery())
		all.Size = int(total)
		res, err := s.index.Search(all)
		if err != nil {
			return err
		}
		for _, hit := range res.Hits {
			if _, ok := keep[hit.ID]; !ok {
				batch.Delete(hit.ID)
			}
		}
	}

	for _, p := range papers {
		if err := batch.Index(p.ID, document(p)); err != nil {
			return err
		}
	}
	return s.index.Batch(batch)
}

func andQ(qs ...query.Query) query.Query {
	ands := make([]query.Query, 0, len(qs))
	for _, q := range qs {
		if q != nil {
			ands = append(ands, q)
		}
	}

	if len(ands) == 0 {
		return nil
	}
	return query.NewConjunctionQuery(ands)
}

func orQ(qs ...query.Query) query.Query {
	ors := make([]query.Query, 0, len(qs))
	for _, q := range qs {
		if q != nil {
			ors = append(ors, q)
		}
	}

	if len(ors) == 0 {
		return nil
	}
	return query.NewDisjunctionQuery(ors)
}

func (s *PaperIndex) searchWords(queryString string) query.Query {
	words := strings.Fields(queryString)

	ands := make([]query.Query, 0, len(words))
	for _, word := range words {
		ands = append(ands, orQ(
			s.prefixes(word, en.AnalyzerName, "title"),
			s.prefixes(word, en.AnalyzerName, "note"),
			s.prefixes(word, simple.Name, "authors"),
			s.prefixes(word, simple.Name, "category"),
		))
	}

	return andQ(ands...)
}

// prefixes analyzes word with analyzer and matches every token as a prefix
// in field.
func (s *PaperIndex) prefixes(word, analyzer, field string) query.Query {
	tokens := s.index.Mapping().AnalyzerNamed(analyzer).Analyze([]byte(word))
	if len(tokens) == 0 {
		return nil
	}

	conjuncs := make([]query.Query, len(tokens))
	for i, token := range tokens {
		conjuncs[i] = &query.PrefixQuery{
			Prefix:   string(token.Term),
			FieldVal: field,
		}
	}

	return query.NewConjunctionQuery(conjuncs)
}
