package meta

import (
	"context"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDocument() *Tree {
	start2005 := time.Date(2005, 1, 1, 0, 0, 0, 0, time.UTC)
	end2010 := time.Date(2010, 1, 1, 0, 0, 0, 0, time.UTC)
	start2010 := end2010

	return &Tree{
		Source: "IRIS-DMC",
		Networks: []Network{
			{
				Code: "IU",
				Stations: []Station{
					{
						Code: "ANMO",
						Channels: []Channel{
							{Code: "BHZ", LocationCode: "00", StartDate: &start2005, EndDate: &end2010},
							{Code: "BHZ", LocationCode: "00", StartDate: &start2010},
							{Code: "BHN", LocationCode: "00", StartDate: &start2010},
							{Code: "LHZ", LocationCode: "", StartDate: &start2010},
						},
					},
					{
						Code: "COLA",
						Channels: []Channel{
							{Code: "BHZ", LocationCode: "00", StartDate: &start2010},
						},
					},
				},
			},
			{
				Code: "US",
				Stations: []Station{
					{
						Code: "AAM",
						Channels: []Channel{
							{Code: "BHZ", LocationCode: "00", StartDate: &start2010},
						},
					},
				},
			},
		},
	}
}

func TestFilter(t *testing.T) {
	doc := testDocument()

	tests := []struct {
		name        string
		sel         Selector
		wantMatch   bool
		wantStation string
		wantChans   int
	}{
		{
			name: "exact channel",
			sel: Selector{
				Network: "IU", Station: "ANMO", Location: "00", Channel: "BHN",
				Start: time.Date(2015, 1, 1, 0, 0, 0, 0, time.UTC),
				End:   time.Date(2015, 1, 2, 0, 0, 0, 0, time.UTC),
			},
			wantMatch:   true,
			wantStation: "ANMO",
			wantChans:   1,
		},
		{
			name: "epoch selection by time range",
			sel: Selector{
				Network: "IU", Station: "ANMO", Location: "00", Channel: "BHZ",
				Start: time.Date(2007, 6, 1, 0, 0, 0, 0, time.UTC),
				End:   time.Date(2007, 6, 2, 0, 0, 0, 0, time.UTC),
			},
			wantMatch:   true,
			wantStation: "ANMO",
			wantChans:   1,
		},
		{
			name: "blank location matches double dash selector",
			sel: Selector{
				Network: "IU", Station: "ANMO", Location: "--", Channel: "LHZ",
			},
			wantMatch:   true,
			wantStation: "ANMO",
			wantChans:   1,
		},
		{
			name: "empty codes match anything",
			sel: Selector{
				Station: "COLA", Location: "00",
			},
			wantMatch:   true,
			wantStation: "COLA",
			wantChans:   1,
		},
		{
			name: "no such station",
			sel: Selector{
				Network: "IU", Station: "NOPE", Location: "00", Channel: "BHZ",
			},
			wantMatch: false,
		},
		{
			name: "outside channel epoch",
			sel: Selector{
				Network: "IU", Station: "ANMO", Location: "00", Channel: "BHN",
				Start: time.Date(2001, 1, 1, 0, 0, 0, 0, time.UTC),
				End:   time.Date(2001, 1, 2, 0, 0, 0, 0, time.UTC),
			},
			wantMatch: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := filter(doc, tt.sel)
			if !tt.wantMatch {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, "IRIS-DMC", got.Source)

			_, sta, _, ok := got.First()
			require.True(t, ok)
			assert.Equal(t, tt.wantStation, sta.Code)
			assert.Len(t, sta.Channels, tt.wantChans)
		})
	}
}

func TestFilterDoesNotMutateDocument(t *testing.T) {
	doc := testDocument()
	before := len(doc.Networks[0].Stations[0].Channels)

	_ = filter(doc, Selector{Network: "IU", Station: "ANMO", Location: "00", Channel: "BHN"})

	assert.Len(t, doc.Networks[0].Stations[0].Channels, before)
}

type stubSource struct {
	tree *Tree
	err  error
	hits int
}

func (s *stubSource) Resolve(_ context.Context, _ Selector) (*Tree, error) {
	s.hits++
	if s.err != nil {
		return nil, s.err
	}
	return s.tree, nil
}

func TestChainFirstSourceWins(t *testing.T) {
	local := &stubSource{tree: &Tree{Source: "local"}}
	remote := &stubSource{tree: &Tree{Source: "remote"}}

	tree, err := Chain{local, remote}.Resolve(context.Background(), Selector{})
	require.NoError(t, err)
	assert.Equal(t, "local", tree.Source)
	assert.Equal(t, 0, remote.hits)
}

func TestChainFallsThroughOnNotFound(t *testing.T) {
	local := &stubSource{err: eris.Wrap(ErrNotFound, "nothing local")}
	remote := &stubSource{tree: &Tree{Source: "remote"}}

	tree, err := Chain{local, remote}.Resolve(context.Background(), Selector{})
	require.NoError(t, err)
	assert.Equal(t, "remote", tree.Source)
	assert.Equal(t, 1, local.hits)
}

func TestChainFallsThroughOnBackendFailure(t *testing.T) {
	local := &stubSource{err: eris.New("disk on fire")}
	remote := &stubSource{tree: &Tree{Source: "remote"}}

	tree, err := Chain{local, remote}.Resolve(context.Background(), Selector{})
	require.NoError(t, err)
	assert.Equal(t, "remote", tree.Source)
}

func TestChainExhausted(t *testing.T) {
	local := &stubSource{err: ErrNotFound}
	remote := &stubSource{err: ErrNotFound}

	_, err := Chain{local, remote}.Resolve(context.Background(), Selector{})
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrNotFound))
}
