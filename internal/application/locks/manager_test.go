package locks_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/tradewars-server/internal/application/locks"
)

func TestAcquire_SerializesAccessToOneKey(t *testing.T) {
	// Arrange
	manager := locks.NewManager()
	ctx := context.Background()
	counter := 0

	// Act
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			guard, err := manager.Acquire(ctx, locks.CreditKey("char-a"))
			require.NoError(t, err)
			defer guard.Release()
			counter++
		}()
	}
	wg.Wait()

	// Assert
	assert.Equal(t, 50, counter)
}

func TestAcquireKeys_SortedOrderAvoidsTransferDeadlock(t *testing.T) {
	// Arrange
	manager := locks.NewManager()
	ctx := context.Background()
	balances := map[string]int{"char-a": 1000, "char-b": 1000}

	transfer := func(from, to string, amount int) {
		guard, err := manager.AcquireKeys(ctx, locks.CreditKey(from), locks.CreditKey(to))
		require.NoError(t, err)
		defer guard.Release()
		balances[from] -= amount
		balances[to] += amount
	}

	// Act
	// Opposite-direction transfers grab the same pair of keys; sorted
	// acquisition keeps them from deadlocking against each other.
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			transfer("char-a", "char-b", 1)
		}()
		go func() {
			defer wg.Done()
			transfer("char-b", "char-a", 1)
		}()
	}
	wg.Wait()

	// Assert
	assert.Equal(t, 1000, balances["char-a"])
	assert.Equal(t, 1000, balances["char-b"])
}

func TestAcquireKeys_CollapsesDuplicateKeys(t *testing.T) {
	// Arrange
	manager := locks.NewManager()
	ctx := context.Background()

	// Act
	guard, err := manager.AcquireKeys(ctx, locks.CreditKey("char-a"), locks.CreditKey("char-a"))

	// Assert
	// A duplicate key must not self-deadlock; the second copy is collapsed.
	require.NoError(t, err)
	guard.Release()
}

func TestAcquire_ContextCancellationReleasesWaiters(t *testing.T) {
	// Arrange
	manager := locks.NewManager()
	holder, err := manager.Acquire(context.Background(), locks.CombatKey(7))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	// Act
	guard, err := manager.Acquire(ctx, locks.CombatKey(7))

	// Assert
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Nil(t, guard)

	// The key is still usable once the original holder lets go.
	holder.Release()
	guard, err = manager.Acquire(context.Background(), locks.CombatKey(7))
	require.NoError(t, err)
	guard.Release()
}

func TestAcquireKeys_CancellationReleasesPartialHolds(t *testing.T) {
	// Arrange
	manager := locks.NewManager()
	blocker, err := manager.Acquire(context.Background(), locks.CreditKey("char-b"))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	// Act
	// char-a sorts first and is taken before the blocked char-b; the
	// failure must hand char-a back.
	guard, err := manager.AcquireKeys(ctx, locks.CreditKey("char-a"), locks.CreditKey("char-b"))

	// Assert
	require.Error(t, err)
	assert.Nil(t, guard)

	reacquired, err := manager.Acquire(context.Background(), locks.CreditKey("char-a"))
	require.NoError(t, err)
	reacquired.Release()
	blocker.Release()
}

func TestGuard_ReleaseIsIdempotent(t *testing.T) {
	// Arrange
	manager := locks.NewManager()
	guard, err := manager.Acquire(context.Background(), locks.PortKey(3))
	require.NoError(t, err)

	// Act
	guard.Release()
	guard.Release()

	// Assert
	again, err := manager.Acquire(context.Background(), locks.PortKey(3))
	require.NoError(t, err)
	again.Release()
}

func TestLockKeys_AreNamespaced(t *testing.T) {
	assert.Equal(t, "character:char-a", locks.CharacterKey("char-a"))
	assert.Equal(t, "credit:char-a", locks.CreditKey("char-a"))
	assert.Equal(t, "knowledge:char-a", locks.KnowledgeKey("char-a"))
	assert.Equal(t, "combat:7", locks.CombatKey(7))
	assert.Equal(t, "port:7", locks.PortKey(7))
}
