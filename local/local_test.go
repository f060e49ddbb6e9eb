package local

import (
	"context"
	goerrors "errors"
	"testing"
	"time"

	"github.com/go-sif/sjoin"
	"github.com/go-sif/sjoin/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestExchangeRoutesParts(t *testing.T) {
	defer goleak.VerifyNone(t)

	size := 3
	results, errs, err := Run(context.Background(), size, func(ctx context.Context, tr sjoin.Transport) ([][]byte, error) {
		me := byte(tr.Comm().Rank)
		parts := make([][]byte, size)
		for to := range parts {
			parts[to] = []byte{me, byte(to)}
		}
		return tr.Exchange(ctx, parts)
	})
	require.Nil(t, err)
	for r := 0; r < size; r++ {
		require.Nil(t, errs[r])
		for from := 0; from < size; from++ {
			require.Equal(t, []byte{byte(from), byte(r)}, results[r][from])
		}
	}
}

func TestConsecutiveRoundsStayOrdered(t *testing.T) {
	defer goleak.VerifyNone(t)

	size, rounds := 4, 25
	results, errs, err := Run(context.Background(), size, func(ctx context.Context, tr sjoin.Transport) ([]byte, error) {
		seen := make([]byte, 0, rounds)
		for round := 0; round < rounds; round++ {
			parts := make([][]byte, size)
			for to := range parts {
				parts[to] = []byte{byte(round)}
			}
			recv, err := tr.Exchange(ctx, parts)
			if err != nil {
				return nil, err
			}
			for _, p := range recv {
				if p[0] != byte(round) {
					return nil, goerrors.New("rounds interleaved")
				}
			}
			seen = append(seen, byte(round))
		}
		return seen, nil
	})
	require.Nil(t, err)
	for r := range results {
		require.Nil(t, errs[r])
		require.Len(t, results[r], rounds)
	}
}

func TestExchangeCancelled(t *testing.T) {
	defer goleak.VerifyNone(t)

	group, err := NewGroup(2)
	require.Nil(t, err)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	// rank 1 never participates
	_, err = group[0].Exchange(ctx, [][]byte{{1}, {2}})
	var terr *errors.TransportError
	require.True(t, goerrors.As(err, &terr))
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestNewGroupRejectsEmptyGroup(t *testing.T) {
	_, err := NewGroup(0)
	var cerr errors.ConfigurationError
	require.True(t, goerrors.As(err, &cerr))
}
