package repository_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/argus/pkg/domain/interfaces"
	"github.com/secmon-lab/argus/pkg/repository/firestore"
	"github.com/secmon-lab/argus/pkg/repository/memory"
)

func newMemoryTestRepository(t *testing.T) interfaces.Repository {
	t.Helper()
	return memory.New()
}

func newFirestoreTestRepository(t *testing.T) interfaces.Repository {
	t.Helper()

	projectID := os.Getenv("TEST_FIRESTORE_PROJECT_ID")
	if projectID == "" {
		t.Skip("TEST_FIRESTORE_PROJECT_ID not set")
	}

	databaseID := os.Getenv("TEST_FIRESTORE_DATABASE_ID")
	if databaseID == "" {
		t.Skip("TEST_FIRESTORE_DATABASE_ID not set")
	}

	ctx := context.Background()
	prefix := fmt.Sprintf("test_%d", time.Now().UnixNano())
	repo, err := firestore.New(ctx, projectID, databaseID, firestore.WithCollectionPrefix(prefix))
	gt.NoError(t, err).Required()
	t.Cleanup(func() {
		gt.NoError(t, repo.Close())
	})

	return repo
}

func TestRepository_Memory(t *testing.T) {
	runCaseRepositoryTest(t, newMemoryTestRepository)
	runTransactionRepositoryTest(t, newMemoryTestRepository)
	runAlertRepositoryTest(t, newMemoryTestRepository)
	runUserRepositoryTest(t, newMemoryTestRepository)
	runRuleRepositoryTest(t, newMemoryTestRepository)
	runAuditLogRepositoryTest(t, newMemoryTestRepository)
	runAnnouncementRepositoryTest(t, newMemoryTestRepository)
}

func TestRepository_Firestore(t *testing.T) {
	runCaseRepositoryTest(t, newFirestoreTestRepository)
	runTransactionRepositoryTest(t, newFirestoreTestRepository)
	runAlertRepositoryTest(t, newFirestoreTestRepository)
	runUserRepositoryTest(t, newFirestoreTestRepository)
	runRuleRepositoryTest(t, newFirestoreTestRepository)
	runAuditLogRepositoryTest(t, newFirestoreTestRepository)
	runAnnouncementRepositoryTest(t, newFirestoreTestRepository)
}
