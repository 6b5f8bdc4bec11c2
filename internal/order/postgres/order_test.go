package postgres

import (
	"testing"
	"time"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/boostify/storefront/internal/order"
)

func TestOrderRepository(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "Order Repository Suite")
}

// OrderSQLite mirrors the orders table with text instead of jsonb so the
// in-memory SQLite driver can migrate it.
type OrderSQLite struct {
	ID            int64     `gorm:"primaryKey"`
	UserID        int64     `gorm:"column:user_id;not null"`
	ServiceID     int64     `gorm:"column:service_id;not null"`
	TransactionID string    `gorm:"column:transaction_id;uniqueIndex;not null"`
	Status        string    `gorm:"column:status;default:pending"`
	Quantity      int       `gorm:"column:quantity;not null"`
	TargetLink    *string   `gorm:"column:target_link"`
	TotalAmount   int64     `gorm:"column:total_amount;not null"`
	Currency      string    `gorm:"column:currency;default:USD"`
	Details       string    `gorm:"column:details;type:text"`
	CreatedAt     time.Time `gorm:"column:created_at"`
	UpdatedAt     time.Time `gorm:"column:updated_at"`
}

func (OrderSQLite) TableName() string {
	return "orders"
}

var _ = ginkgo.Describe("OrderRepository", func() {
	var (
		db   *gorm.DB
		repo order.Repository
	)

	newOrder := func(txn string) *order.Order {
		return &order.Order{
			UserID:        10,
			ServiceID:     1,
			TransactionID: txn,
			Status:        order.StatusPending,
			Quantity:      2,
			TotalAmount:   2998,
			Currency:      "USD",
			Details: order.Details{
				ServiceName:    "1000 Followers",
				Category:       "Followers",
				UnitPriceCents: 1499,
			},
		}
	}

	ginkgo.BeforeEach(func() {
		var err error
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			NowFunc: func() time.Time { return time.Now().UTC() },
		})
		gomega.Expect(err).ToNot(gomega.HaveOccurred())

		err = db.AutoMigrate(&OrderSQLite{})
		gomega.Expect(err).ToNot(gomega.HaveOccurred())

		repo = NewOrderRepository(db)
	})

	ginkgo.Describe("Create and read back", func() {
		ginkgo.It("round-trips the details snapshot", func() {
			o := newOrder("txn-1")
			gomega.Expect(repo.Create(o)).To(gomega.Succeed())
			gomega.Expect(o.ID).To(gomega.BeNumerically(">", 0))

			loaded, err := repo.GetByTransactionID("txn-1")
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(loaded.Details.ServiceName).To(gomega.Equal("1000 Followers"))
			gomega.Expect(loaded.Details.UnitPriceCents).To(gomega.Equal(int64(1499)))
			gomega.Expect(loaded.TotalAmount).To(gomega.Equal(int64(2998)))
		})

		ginkgo.It("returns the typed not-found error", func() {
			_, err := repo.GetByTransactionID("missing")
			gomega.Expect(err).To(gomega.HaveOccurred())
		})
	})

	ginkgo.Describe("CreateBatch", func() {
		ginkgo.It("persists every order in the batch", func() {
			batch := []*order.Order{newOrder("txn-b1"), newOrder("txn-b2")}
			gomega.Expect(repo.CreateBatch(batch)).To(gomega.Succeed())
			gomega.Expect(batch[0].ID).To(gomega.BeNumerically(">", 0))
			gomega.Expect(batch[1].ID).To(gomega.BeNumerically(">", 0))
		})

		ginkgo.It("rolls back the whole batch when a later insert fails", func() {
			batch := []*order.Order{newOrder("txn-dup"), newOrder("txn-dup")}
			gomega.Expect(repo.CreateBatch(batch)).ToNot(gomega.Succeed())

			var count int64
			gomega.Expect(db.Model(&OrderSQLite{}).Count(&count).Error).To(gomega.Succeed())
			gomega.Expect(count).To(gomega.BeZero())
		})
	})

	ginkgo.Describe("UpdateStatusIf", func() {
		ginkgo.It("applies a matching transition exactly once", func() {
			o := newOrder("txn-2")
			gomega.Expect(repo.Create(o)).To(gomega.Succeed())

			applied, err := repo.UpdateStatusIf(o.ID, order.StatusPending, order.StatusProcessing)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(applied).To(gomega.BeTrue())

			applied, err = repo.UpdateStatusIf(o.ID, order.StatusPending, order.StatusProcessing)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(applied).To(gomega.BeFalse())

			loaded, _ := repo.GetByID(o.ID)
			gomega.Expect(loaded.Status).To(gomega.Equal(order.StatusProcessing))
		})
	})

	ginkgo.Describe("UpdateStatusByTransactionIf", func() {
		ginkgo.It("never moves an already-settled order", func() {
			o := newOrder("txn-3")
			gomega.Expect(repo.Create(o)).To(gomega.Succeed())

			applied, err := repo.UpdateStatusByTransactionIf("txn-3", order.StatusPending, order.StatusFailed)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(applied).To(gomega.BeTrue())

			applied, err = repo.UpdateStatusByTransactionIf("txn-3", order.StatusPending, order.StatusProcessing)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(applied).To(gomega.BeFalse())

			loaded, _ := repo.GetByTransactionID("txn-3")
			gomega.Expect(loaded.Status).To(gomega.Equal(order.StatusFailed))
		})
	})

	ginkgo.Describe("GetByUserID", func() {
		ginkgo.It("returns only the user's orders", func() {
			first := newOrder("txn-4")
			gomega.Expect(repo.Create(first)).To(gomega.Succeed())

			other := newOrder("txn-5")
			other.UserID = 99
			gomega.Expect(repo.Create(other)).To(gomega.Succeed())

			mine, err := repo.GetByUserID(10, 20, 0)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(mine).To(gomega.HaveLen(1))
			gomega.Expect(mine[0].TransactionID).To(gomega.Equal("txn-4"))
		})
	})
})
