package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jrbeckett/speedreader/internal/imgtensor"
)

func TestFacadeRunStripsBatchDimension(t *testing.T) {
	f := NewCPUEngine(NullKernel{}, 2)
	defer f.Close() //nolint:errcheck

	data := []float32{1, 2, 3, 4, 5, 6}
	ticket, err := f.Run(context.Background(), data, [3]int64{1, 2, 3})
	require.NoError(t, err)

	result, err := ticket.Wait(context.Background())
	require.NoError(t, err)

	res, ok := result.(Result)
	require.True(t, ok)
	assert.Equal(t, [3]int64{1, 2, 3}, res.Shape)
	assert.Equal(t, data, res.Data)
}

func TestFacadeRunPropagatesKernelError(t *testing.T) {
	wantErr := errors.New("boom")
	kernel := FuncKernel(func(_ context.Context, _ imgtensor.Tensor) (imgtensor.Tensor, error) {
		return imgtensor.Tensor{}, wantErr
	})

	f := NewCPUEngine(kernel, 1)
	defer f.Close() //nolint:errcheck

	ticket, err := f.Run(context.Background(), []float32{1}, [3]int64{1, 1, 1})
	require.NoError(t, err)

	_, err = ticket.Wait(context.Background())
	require.ErrorIs(t, err, wantErr)
}

func TestFacadeCurrentMaxCapacityReflectsExecutor(t *testing.T) {
	f := NewCPUEngine(NullKernel{}, 3)
	defer f.Close() //nolint:errcheck

	assert.Equal(t, 3, f.CurrentMaxCapacity())
}
