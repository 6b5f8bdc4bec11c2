package catalog_test

import (
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	errors "github.com/boostify/storefront/internal"
	"github.com/boostify/storefront/internal/catalog"
)

func TestCatalogService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Catalog Service Suite")
}

type mockCatalogRepository struct {
	services map[int64]*catalog.Service
	nextID   int64
	failWith error
}

func newMockCatalogRepository() *mockCatalogRepository {
	return &mockCatalogRepository{services: make(map[int64]*catalog.Service)}
}

func (m *mockCatalogRepository) GetAll(includeInactive bool) ([]*catalog.Service, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	var result []*catalog.Service
	for _, svc := range m.services {
		if !includeInactive && !svc.IsPurchasable() {
			continue
		}
		result = append(result, svc)
	}
	return result, nil
}

func (m *mockCatalogRepository) GetByID(id int64) (*catalog.Service, error) {
	svc, ok := m.services[id]
	if !ok {
		return nil, errors.ErrServiceNotFound
	}
	return svc, nil
}

func (m *mockCatalogRepository) Create(svc *catalog.Service) error {
	m.nextID++
	svc.ID = m.nextID
	m.services[svc.ID] = svc
	return nil
}

func (m *mockCatalogRepository) Update(svc *catalog.Service) error {
	if _, ok := m.services[svc.ID]; !ok {
		return errors.ErrServiceNotFound
	}
	m.services[svc.ID] = svc
	return nil
}

func (m *mockCatalogRepository) SoftDelete(id int64) error {
	svc, ok := m.services[id]
	if !ok {
		return errors.ErrServiceNotFound
	}
	now := time.Now()
	svc.DeletedAt = &now
	return nil
}

type mockRateConverter struct {
	rate    float64
	failing bool
}

func (m *mockRateConverter) Convert(amountCents int64, currency string) (float64, error) {
	if m.failing {
		return 0, fmt.Errorf("no cached rate for %s", currency)
	}
	return float64(amountCents) / 100 * m.rate, nil
}

var _ = Describe("CatalogService", func() {
	var (
		svc    *catalog.CatalogService
		repo   *mockCatalogRepository
		rates  *mockRateConverter
		logger *slog.Logger
	)

	seedService := func(name string, priceCents int64, category string, active bool) *catalog.Service {
		s := &catalog.Service{
			Name:       name,
			PriceCents: priceCents,
			Category:   category,
			IsActive:   active,
		}
		Expect(repo.Create(s)).To(Succeed())
		return s
	}

	BeforeEach(func() {
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		repo = newMockCatalogRepository()
		rates = &mockRateConverter{rate: 0.9}
		svc = catalog.NewCatalogService(repo, rates, logger)
	})

	Describe("ListActive", func() {
		BeforeEach(func() {
			seedService("1000 Instagram Followers", 1499, catalog.CategoryFollowers, true)
			seedService("Retired Package", 999, catalog.CategoryViews, false)
		})

		It("only lists purchasable services", func() {
			listed, err := svc.ListActive("")
			Expect(err).ToNot(HaveOccurred())
			Expect(listed).To(HaveLen(1))
			Expect(listed[0].Name).To(Equal("1000 Instagram Followers"))
			Expect(listed[0].DisplayPrice).To(BeNil())
		})

		It("excludes soft deleted services even when still active", func() {
			deleted := seedService("Pulled Package", 499, catalog.CategoryLikes, true)
			Expect(repo.SoftDelete(deleted.ID)).To(Succeed())

			listed, err := svc.ListActive("")
			Expect(err).ToNot(HaveOccurred())
			Expect(listed).To(HaveLen(1))
		})

		It("converts prices to the display currency", func() {
			listed, err := svc.ListActive("EUR")
			Expect(err).ToNot(HaveOccurred())
			Expect(listed).To(HaveLen(1))
			Expect(listed[0].DisplayPrice).ToNot(BeNil())
			Expect(*listed[0].DisplayPrice).To(BeNumerically("~", 13.49, 0.01))
			Expect(listed[0].DisplayCurrency).To(Equal("EUR"))
			Expect(listed[0].PriceCents).To(Equal(int64(1499)))
		})

		It("degrades to base prices when conversion is unavailable", func() {
			rates.failing = true

			listed, err := svc.ListActive("EUR")
			Expect(err).ToNot(HaveOccurred())
			Expect(listed).To(HaveLen(1))
			Expect(listed[0].DisplayPrice).To(BeNil())
			Expect(listed[0].DisplayCurrency).To(BeEmpty())
		})

		It("skips conversion for the base currency", func() {
			listed, err := svc.ListActive("USD")
			Expect(err).ToNot(HaveOccurred())
			Expect(listed[0].DisplayPrice).To(BeNil())
		})
	})

	Describe("GetPurchasable", func() {
		It("returns not found for unknown services", func() {
			_, err := svc.GetPurchasable(999)
			Expect(err).To(Equal(errors.ErrServiceNotFound))
		})

		It("rejects inactive services", func() {
			inactive := seedService("Retired Package", 999, catalog.CategoryViews, false)

			_, err := svc.GetPurchasable(inactive.ID)
			Expect(err).To(Equal(errors.ErrServiceInactive))
		})

		It("returns active services", func() {
			active := seedService("500 Post Likes", 499, catalog.CategoryLikes, true)

			found, err := svc.GetPurchasable(active.ID)
			Expect(err).ToNot(HaveOccurred())
			Expect(found.PriceCents).To(Equal(int64(499)))
		})
	})

	Describe("CreateService", func() {
		It("creates an active service by default", func() {
			created, err := svc.CreateService(catalog.CreateServiceDTO{
				Name:       "5000 Video Views",
				PriceCents: 999,
				Category:   catalog.CategoryViews,
			})
			Expect(err).ToNot(HaveOccurred())
			Expect(created.ID).ToNot(BeZero())
			Expect(created.IsActive).To(BeTrue())
		})

		It("rejects a zero price", func() {
			_, err := svc.CreateService(catalog.CreateServiceDTO{
				Name:     "Free Followers",
				Category: catalog.CategoryFollowers,
			})
			Expect(err).To(HaveOccurred())
		})

		It("rejects a missing name", func() {
			_, err := svc.CreateService(catalog.CreateServiceDTO{
				PriceCents: 999,
				Category:   catalog.CategoryViews,
			})
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("UpdateService", func() {
		It("applies partial updates", func() {
			existing := seedService("1000 Instagram Followers", 1499, catalog.CategoryFollowers, true)

			newPrice := int64(1299)
			inactive := false
			updated, err := svc.UpdateService(existing.ID, catalog.UpdateServiceDTO{
				PriceCents: &newPrice,
				IsActive:   &inactive,
			})
			Expect(err).ToNot(HaveOccurred())
			Expect(updated.PriceCents).To(Equal(int64(1299)))
			Expect(updated.IsActive).To(BeFalse())
			Expect(updated.Name).To(Equal("1000 Instagram Followers"))
		})

		It("returns not found for unknown services", func() {
			name := "Renamed"
			_, err := svc.UpdateService(999, catalog.UpdateServiceDTO{Name: &name})
			Expect(err).To(Equal(errors.ErrServiceNotFound))
		})
	})

	Describe("DeleteService", func() {
		It("soft deletes and removes the service from checkout", func() {
			existing := seedService("500 Post Likes", 499, catalog.CategoryLikes, true)

			Expect(svc.DeleteService(existing.ID)).To(Succeed())

			_, err := svc.GetPurchasable(existing.ID)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("uploads", func() {
		It("records the image URL", func() {
			existing := seedService("1000 Instagram Followers", 1499, catalog.CategoryFollowers, true)

			updated, err := svc.SetImage(existing.ID, "/uploads/image/followers.png")
			Expect(err).ToNot(HaveOccurred())
			Expect(updated.ImageURL).ToNot(BeNil())
			Expect(*updated.ImageURL).To(Equal("/uploads/image/followers.png"))
		})

		It("records the asset path for digital products", func() {
			existing := seedService("Growth Playbook (PDF)", 2900, catalog.CategoryDigitalLibrary, true)

			updated, err := svc.SetAsset(existing.ID, "uploads/asset/playbook.pdf")
			Expect(err).ToNot(HaveOccurred())
			Expect(updated.AssetPath).ToNot(BeNil())
			Expect(updated.IsDigital()).To(BeTrue())
		})
	})
})
