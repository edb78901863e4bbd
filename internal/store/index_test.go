package store_test

import (
	"context"
	"testing"

	"github.com/contentgrid/content-search/internal/config"
	"github.com/contentgrid/content-search/internal/store"
	"github.com/contentgrid/content-search/internal/store/model"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

func TestStore(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Store Suite")
}

func site(id string) *string {
	return &id
}

var _ = Describe("index store", Ordered, func() {
	var (
		s      store.Store
		gormdb *gorm.DB
	)

	BeforeAll(func() {
		db, err := store.InitDB(config.NewDefault())
		Expect(err).To(BeNil())

		s = store.NewStore(db)
		gormdb = db
		err = s.InitialMigration()
		Expect(err).To(BeNil())
	})

	AfterAll(func() {
		s.Close()
	})

	AfterEach(func() {
		gormdb.Exec("DELETE FROM document_terms;")
		gormdb.Exec("DELETE FROM document_principals;")
		gormdb.Exec("DELETE FROM documents;")
	})

	Context("upsert", func() {
		It("creates a document with its postings", func() {
			doc := model.Document{ID: "item-1", Name: "test.txt", IsFile: true, OwnerID: "userSite1", SiteID: site("site1"), Body: "This is the first test", Sequence: 1}
			applied, err := s.Index().Upsert(context.TODO(), doc, []string{"this", "is", "the", "first", "test"}, []string{"userSite1", "userMultiSite"})
			Expect(err).To(BeNil())
			Expect(applied).To(BeTrue())

			got, err := s.Index().Get(context.TODO(), "item-1")
			Expect(err).To(BeNil())
			Expect(got.Name).To(Equal("test.txt"))
			Expect(got.Sequence).To(Equal(int64(1)))

			var terms int64
			gormdb.Model(&model.DocumentTerm{}).Where("document_id = ?", "item-1").Count(&terms)
			Expect(terms).To(Equal(int64(5)))
		})

		It("replaces postings atomically on update", func() {
			doc := model.Document{ID: "item-1", Name: "test.txt", IsFile: true, OwnerID: "userSite1", Body: "old words", Sequence: 1}
			_, err := s.Index().Upsert(context.TODO(), doc, []string{"old", "words"}, []string{"userSite1"})
			Expect(err).To(BeNil())

			doc.Body = "new words"
			doc.Sequence = 2
			applied, err := s.Index().Upsert(context.TODO(), doc, []string{"new", "words"}, []string{"userSite1", "userSite2"})
			Expect(err).To(BeNil())
			Expect(applied).To(BeTrue())

			var old int64
			gormdb.Model(&model.DocumentTerm{}).Where("document_id = ? AND term = ?", "item-1", "old").Count(&old)
			Expect(old).To(Equal(int64(0)))

			var acl int64
			gormdb.Model(&model.DocumentPrincipal{}).Where("document_id = ?", "item-1").Count(&acl)
			Expect(acl).To(Equal(int64(2)))
		})

		It("ignores a stale sequence", func() {
			doc := model.Document{ID: "item-1", Name: "test.txt", IsFile: true, OwnerID: "userSite1", Body: "newer", Sequence: 5}
			_, err := s.Index().Upsert(context.TODO(), doc, []string{"newer"}, []string{"userSite1"})
			Expect(err).To(BeNil())

			stale := model.Document{ID: "item-1", Name: "test.txt", IsFile: true, OwnerID: "userSite1", Body: "older", Sequence: 3}
			applied, err := s.Index().Upsert(context.TODO(), stale, []string{"older"}, []string{"userSite1"})
			Expect(err).To(BeNil())
			Expect(applied).To(BeFalse())

			got, err := s.Index().Get(context.TODO(), "item-1")
			Expect(err).To(BeNil())
			Expect(got.Body).To(Equal("newer"))
			Expect(got.Sequence).To(Equal(int64(5)))
		})

		It("is idempotent for an equal sequence", func() {
			doc := model.Document{ID: "item-1", Name: "test.txt", IsFile: true, OwnerID: "userSite1", Body: "same", Sequence: 2}
			applied, err := s.Index().Upsert(context.TODO(), doc, []string{"same"}, []string{"userSite1"})
			Expect(err).To(BeNil())
			Expect(applied).To(BeTrue())

			applied, err = s.Index().Upsert(context.TODO(), doc, []string{"same"}, []string{"userSite1"})
			Expect(err).To(BeNil())
			Expect(applied).To(BeFalse())
		})

		It("rejects an upsert against a tombstone", func() {
			applied, err := s.Index().Tombstone(context.TODO(), "item-1", 4)
			Expect(err).To(BeNil())
			Expect(applied).To(BeTrue())

			doc := model.Document{ID: "item-1", Name: "test.txt", IsFile: true, OwnerID: "userSite1", Body: "late", Sequence: 9}
			_, err = s.Index().Upsert(context.TODO(), doc, []string{"late"}, []string{"userSite1"})
			Expect(err).To(Equal(store.ErrTombstoned))
		})
	})

	Context("tombstone", func() {
		It("removes the document from search results", func() {
			doc := model.Document{ID: "item-1", Name: "test.txt", IsFile: true, OwnerID: "userSite1", Body: "findable", Sequence: 1}
			_, err := s.Index().Upsert(context.TODO(), doc, []string{"findable"}, []string{"userSite1"})
			Expect(err).To(BeNil())

			applied, err := s.Index().Tombstone(context.TODO(), "item-1", 2)
			Expect(err).To(BeNil())
			Expect(applied).To(BeTrue())

			filter := store.NewSearchQueryFilter().ByTerms([]string{"findable"}).ByPrincipal("userSite1")
			docs, err := s.Index().Search(context.TODO(), filter, nil)
			Expect(err).To(BeNil())
			Expect(docs).To(BeEmpty())
		})

		It("keeps a tombstone for an unseen item", func() {
			applied, err := s.Index().Tombstone(context.TODO(), "never-created", 7)
			Expect(err).To(BeNil())
			Expect(applied).To(BeTrue())

			got, err := s.Index().Get(context.TODO(), "never-created")
			Expect(err).To(BeNil())
			Expect(got.Deleted).To(BeTrue())
			Expect(got.Sequence).To(Equal(int64(7)))
		})

		It("ignores a stale delete", func() {
			doc := model.Document{ID: "item-1", Name: "test.txt", IsFile: true, OwnerID: "userSite1", Body: "alive", Sequence: 5}
			_, err := s.Index().Upsert(context.TODO(), doc, []string{"alive"}, []string{"userSite1"})
			Expect(err).To(BeNil())

			applied, err := s.Index().Tombstone(context.TODO(), "item-1", 3)
			Expect(err).To(BeNil())
			Expect(applied).To(BeFalse())

			got, err := s.Index().Get(context.TODO(), "item-1")
			Expect(err).To(BeNil())
			Expect(got.Deleted).To(BeFalse())
		})
	})

	Context("transactions", func() {
		It("discards writes on rollback", func() {
			ctx, err := s.NewTransactionContext(context.TODO())
			Expect(err).To(BeNil())

			doc := model.Document{ID: "item-1", Name: "test.txt", IsFile: true, OwnerID: "userSite1", Body: "uncommitted", Sequence: 1}
			applied, err := s.Index().Upsert(ctx, doc, []string{"uncommitted"}, []string{"userSite1"})
			Expect(err).To(BeNil())
			Expect(applied).To(BeTrue())

			_, err = store.Rollback(ctx)
			Expect(err).To(BeNil())

			_, err = s.Index().Get(context.TODO(), "item-1")
			Expect(err).To(Equal(store.ErrRecordNotFound))
		})

		It("persists writes on commit", func() {
			ctx, err := s.NewTransactionContext(context.TODO())
			Expect(err).To(BeNil())

			doc := model.Document{ID: "item-1", Name: "test.txt", IsFile: true, OwnerID: "userSite1", Body: "committed", Sequence: 1}
			applied, err := s.Index().Upsert(ctx, doc, []string{"committed"}, []string{"userSite1"})
			Expect(err).To(BeNil())
			Expect(applied).To(BeTrue())

			_, err = store.Commit(ctx)
			Expect(err).To(BeNil())

			got, err := s.Index().Get(context.TODO(), "item-1")
			Expect(err).To(BeNil())
			Expect(got.Body).To(Equal("committed"))

			var terms int64
			gormdb.Model(&model.DocumentTerm{}).Where("document_id = ?", "item-1").Count(&terms)
			Expect(terms).To(Equal(int64(1)))
		})
	})

	Context("search", func() {
		BeforeEach(func() {
			docs := []struct {
				doc        model.Document
				terms      []string
				principals []string
			}{
				{
					model.Document{ID: "item-1", Name: "test.txt", IsFile: true, OwnerID: "userSite1", SiteID: site("site1"), Sequence: 1},
					[]string{"this", "is", "the", "first", "test"},
					[]string{"userSite1", "userMultiSite"},
				},
				{
					model.Document{ID: "item-2", Name: "another.txt", IsFile: true, OwnerID: "userSite1", SiteID: site("site1"), Sequence: 2},
					[]string{"this", "is", "another", "test", "file"},
					[]string{"userSite1", "userMultiSite"},
				},
				{
					model.Document{ID: "item-3", Name: "user1.txt", IsFile: true, OwnerID: "userSite2", SiteID: site("site2"), Sequence: 3},
					[]string{"this", "is", "another", "test", "file"},
					[]string{"userSite2", "userMultiSite"},
				},
			}
			for _, d := range docs {
				_, err := s.Index().Upsert(context.TODO(), d.doc, d.terms, d.principals)
				Expect(err).To(BeNil())
			}
		})

		It("matches only documents containing every term", func() {
			filter := store.NewSearchQueryFilter().ByTerms([]string{"first", "test"}).ByPrincipal("userSite1")
			docs, err := s.Index().Search(context.TODO(), filter, nil)
			Expect(err).To(BeNil())
			Expect(docs).To(HaveLen(1))
			Expect(docs[0].ID).To(Equal("item-1"))
		})

		It("filters by principal", func() {
			filter := store.NewSearchQueryFilter().ByTerms([]string{"test"}).ByPrincipal("userSite2")
			docs, err := s.Index().Search(context.TODO(), filter, nil)
			Expect(err).To(BeNil())
			Expect(docs).To(HaveLen(1))
			Expect(docs[0].ID).To(Equal("item-3"))
		})

		It("returns every match for a principal in all acls", func() {
			filter := store.NewSearchQueryFilter().ByTerms([]string{"test"}).ByPrincipal("userMultiSite")
			docs, err := s.Index().Search(context.TODO(), filter, nil)
			Expect(err).To(BeNil())
			Expect(docs).To(HaveLen(3))
		})

		It("filters by site", func() {
			filter := store.NewSearchQueryFilter().ByTerms([]string{"test"}).ByPrincipal("userMultiSite").BySite("site2")
			docs, err := s.Index().Search(context.TODO(), filter, nil)
			Expect(err).To(BeNil())
			Expect(docs).To(HaveLen(1))
			Expect(docs[0].ID).To(Equal("item-3"))
		})

		It("sorts newest first", func() {
			filter := store.NewSearchQueryFilter().ByTerms([]string{"test"}).ByPrincipal("userMultiSite")
			opts := store.NewSearchQueryOptions().WithSortOrder(store.SortBySequence)
			docs, err := s.Index().Search(context.TODO(), filter, opts)
			Expect(err).To(BeNil())
			Expect(docs).To(HaveLen(3))
			Expect(docs[0].ID).To(Equal("item-3"))
		})

		It("counts live documents", func() {
			count, err := s.Index().Count(context.TODO())
			Expect(err).To(BeNil())
			Expect(count).To(Equal(int64(3)))

			_, err = s.Index().Tombstone(context.TODO(), "item-3", 10)
			Expect(err).To(BeNil())

			count, err = s.Index().Count(context.TODO())
			Expect(err).To(BeNil())
			Expect(count).To(Equal(int64(2)))
		})
	})
})
