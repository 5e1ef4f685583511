package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIDFromContent(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "plain text", content: "Art. 1º Fica instituído o programa."},
		{name: "empty string", content: ""},
		{name: "accented text", content: "Dispõe sobre a criação de comissões"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id1 := IDFromContent(tt.content)
			id2 := IDFromContent(tt.content)
			assert.Equal(t, id1, id2)
			assert.False(t, id1.IsNil())
		})
	}
}

func TestIDFromContent_Different(t *testing.T) {
	assert.NotEqual(t, IDFromContent("content1"), IDFromContent("content2"))
	assert.NotEqual(t, IDFromContent("texto"), IDFromContent("texto "))
}

func TestIDFromContent_IsUUIDv5(t *testing.T) {
	// python: uuid.uuid5(uuid.NAMESPACE_DNS, "python.org")
	assert.Equal(t, "886313e1-3b8a-5372-9b90-0c9aee199e5d", IDFromContent("python.org").String())
}

func TestParseChunkID(t *testing.T) {
	id := IDFromContent("round trip")
	parsed, err := ParseChunkID(id.String())
	require.NoError(t, err)
	assert.Equal(t, id, parsed)

	_, err = ParseChunkID("not-a-uuid")
	assert.Error(t, err)
}

func TestJoinKey(t *testing.T) {
	assert.Equal(t, JoinKey("PL 1/2020"), JoinKey("PL 1/2020"))
	assert.NotEqual(t, JoinKey("PL 1/2020"), JoinKey("PL 1 2020"))
	assert.Len(t, JoinKey("PL 1/2020"), 32)
}

func TestNewChunkRecord(t *testing.T) {
	number := 12
	p := Proposal{
		Title:   "PL 12/2021",
		House:   "Assembleia Legislativa de São Paulo",
		Subject: "Dispõe sobre X",
		Number:  &number,
		Meta:    map[string]any{"Ementa": "Dispõe sobre X"},
	}

	record := NewChunkRecord(p, Chunk{Text: "Art. 1º", Index: 3})
	assert.Equal(t, IDFromContent("Art. 1º"), record.Id)
	assert.Equal(t, 3, record.ChunkNumber)
	assert.Nil(t, record.Proposal.Meta)
	assert.NotNil(t, p.Meta, "source proposal must not be mutated")
}

func TestNewChunkRecord_SameTextSameID(t *testing.T) {
	a := NewChunkRecord(Proposal{Title: "A"}, Chunk{Text: "mesmo texto", Index: 0})
	b := NewChunkRecord(Proposal{Title: "B"}, Chunk{Text: "mesmo texto", Index: 7})
	assert.Equal(t, a.Id, b.Id)
}

func TestChunkRecord_Properties(t *testing.T) {
	year := 2020
	date := "10 de maio de 2020"
	record := NewChunkRecord(Proposal{
		Title:            "PL 1/2020",
		Year:             &year,
		PresentationDate: &date,
		Author:           []string{"Fulano"},
	}, Chunk{Text: "texto", Index: 0})

	props := record.Properties()
	assert.Equal(t, "PL 1/2020", props["title"])
	assert.Equal(t, 2020, props["year"])
	assert.Nil(t, props["number"])
	assert.Equal(t, date, props["presentation_date"])
	assert.Equal(t, "texto", props["chunk_text"])
	assert.Equal(t, 0, props["chunk_number"])
	assert.Equal(t, []string{"Fulano"}, props["author"])
}
