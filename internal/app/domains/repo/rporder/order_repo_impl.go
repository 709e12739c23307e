package rporder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"takeout/common/entity"
	"takeout/internal/app/domains/entity/etorder"
	"takeout/internal/app/domains/entity/etprimitive"
	"takeout/internal/app/domains/repo/rpbase"
	"takeout/internal/app/pkg/errorx"
)

// OrderRepositoryImpl 订单仓储实现（MySQL）
type OrderRepositoryImpl struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓储实例
func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &OrderRepositoryImpl{db: db}
}

// addressSnapshot 下单时的地址快照（JSON 列）
type addressSnapshot struct {
	Consignee string `json:"consignee"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
}

// Create 插入订单及明细
func (r *OrderRepositoryImpl) Create(ctx context.Context, order *etorder.Order) error {
	db := rpbase.DB(ctx, r.db)

	po, err := r.toGormModel(order)
	if err != nil {
		return err
	}
	if err := db.Create(po).Error; err != nil {
		return fmt.Errorf("insert order failed: %w", err)
	}
	order.ID = po.ID

	if len(order.Lines) == 0 {
		return nil
	}

	details := make([]*entity.OrderDetail, 0, len(order.Lines))
	for _, l := range order.Lines {
		l.OrderID = po.ID
		details = append(details, toDetailModel(l))
	}
	if err := db.Create(&details).Error; err != nil {
		return fmt.Errorf("insert order details failed: %w", err)
	}
	for i, d := range details {
		order.Lines[i].ID = d.ID
	}
	return nil
}

// GetByID 根据ID查询订单
func (r *OrderRepositoryImpl) GetByID(ctx context.Context, orderID int64) (*etorder.Order, error) {
	return r.first(ctx, "id = ?", orderID)
}

// GetByNumber 根据订单号查询
func (r *OrderRepositoryImpl) GetByNumber(ctx context.Context, number string) (*etorder.Order, error) {
	return r.first(ctx, "number = ?", number)
}

// GetByNumberAndUser 根据订单号和用户查询
func (r *OrderRepositoryImpl) GetByNumberAndUser(ctx context.Context, number string, userID int64) (*etorder.Order, error) {
	return r.first(ctx, "number = ? AND user_id = ?", number, userID)
}

func (r *OrderRepositoryImpl) first(ctx context.Context, query string, args ...interface{}) (*etorder.Order, error) {
	var po entity.Order
	err := rpbase.DB(ctx, r.db).Where(query, args...).First(&po).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.ErrOrderNotFound
		}
		return nil, err
	}
	return toDomainModel(&po), nil
}

// ListLines 查询订单明细
func (r *OrderRepositoryImpl) ListLines(ctx context.Context, orderID int64) ([]*etorder.Line, error) {
	var pos []entity.OrderDetail
	if err := rpbase.DB(ctx, r.db).Where("order_id = ?", orderID).Order("id").Find(&pos).Error; err != nil {
		return nil, err
	}
	lines := make([]*etorder.Line, 0, len(pos))
	for i := range pos {
		lines = append(lines, toLineModel(&pos[i]))
	}
	return lines, nil
}

// ListLinesByOrderIDs 批量查询订单明细
func (r *OrderRepositoryImpl) ListLinesByOrderIDs(ctx context.Context, orderIDs []int64) (map[int64][]*etorder.Line, error) {
	result := make(map[int64][]*etorder.Line, len(orderIDs))
	if len(orderIDs) == 0 {
		return result, nil
	}
	var pos []entity.OrderDetail
	if err := rpbase.DB(ctx, r.db).Where("order_id IN ?", orderIDs).Order("id").Find(&pos).Error; err != nil {
		return nil, err
	}
	for i := range pos {
		l := toLineModel(&pos[i])
		result[l.OrderID] = append(result[l.OrderID], l)
	}
	return result, nil
}

// UpdateIfStatus compare-and-set 更新订单状态
func (r *OrderRepositoryImpl) UpdateIfStatus(ctx context.Context, change *etorder.Change) (bool, error) {
	updates := map[string]interface{}{
		"status":     int(change.ToStatus),
		"pay_status": int(change.ToPayStatus),
	}
	if change.CancelReason != nil {
		updates["cancel_reason"] = *change.CancelReason
	}
	if change.RejectionReason != nil {
		updates["rejection_reason"] = *change.RejectionReason
	}
	if change.CheckoutTime != nil {
		updates["checkout_time"] = *change.CheckoutTime
	}
	if change.CancelTime != nil {
		updates["cancel_time"] = *change.CancelTime
	}
	if change.DeliveryTime != nil {
		updates["delivery_time"] = *change.DeliveryTime
	}

	result := rpbase.DB(ctx, r.db).
		Model(&entity.Order{}).
		Where("id = ? AND status = ? AND pay_status = ?",
			change.OrderID, int(change.FromStatus), int(change.FromPayStatus)).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// ListByStatusOlderThan 查询超时订单
func (r *OrderRepositoryImpl) ListByStatusOlderThan(ctx context.Context, status etorder.Status, cutoff time.Time) ([]*etorder.Order, error) {
	var pos []entity.Order
	err := rpbase.DB(ctx, r.db).
		Where("status = ? AND order_time < ?", int(status), cutoff).
		Order("order_time").
		Find(&pos).Error
	if err != nil {
		return nil, err
	}
	return toDomainModels(pos), nil
}

// PageByUser 用户历史订单
func (r *OrderRepositoryImpl) PageByUser(ctx context.Context, userID int64, status *etorder.Status, page etprimitive.Pagination) (*etprimitive.PageResult[*etorder.Order], error) {
	return r.Search(ctx, &SearchCriteria{UserID: userID, Status: status}, page)
}

// Search 条件分页查询，按下单时间倒序
func (r *OrderRepositoryImpl) Search(ctx context.Context, criteria *SearchCriteria, page etprimitive.Pagination) (*etprimitive.PageResult[*etorder.Order], error) {
	query := rpbase.DB(ctx, r.db).Model(&entity.Order{})
	if criteria != nil {
		if criteria.Number != "" {
			query = query.Where("number LIKE ? ESCAPE '!'", containsPattern(criteria.Number))
		}
		if criteria.Phone != "" {
			query = query.Where("phone LIKE ? ESCAPE '!'", containsPattern(criteria.Phone))
		}
		if criteria.Status != nil {
			query = query.Where("status = ?", int(*criteria.Status))
		}
		if criteria.UserID > 0 {
			query = query.Where("user_id = ?", criteria.UserID)
		}
		if criteria.BeginTime != nil {
			query = query.Where("order_time >= ?", *criteria.BeginTime)
		}
		if criteria.EndTime != nil {
			query = query.Where("order_time <= ?", *criteria.EndTime)
		}
	}

	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	page = page.Normalize()
	var pos []entity.Order
	if err := query.Order("order_time DESC, id DESC").Offset(page.Offset()).Limit(page.PageSize).Find(&pos).Error; err != nil {
		return nil, err
	}

	return &etprimitive.PageResult[*etorder.Order]{
		Total:   total,
		Records: toDomainModels(pos),
	}, nil
}

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// containsPattern 子串匹配的 LIKE 模式，输入中的通配符按字面匹配
// 转义符用 '!'，MySQL 与 SQLite 的字符串字面量中都无需再转义
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

// CountByStatus 按状态统计
func (r *OrderRepositoryImpl) CountByStatus(ctx context.Context, statuses ...etorder.Status) (map[etorder.Status]int64, error) {
	counts := make(map[etorder.Status]int64, len(statuses))
	if len(statuses) == 0 {
		return counts, nil
	}
	values := make([]int, 0, len(statuses))
	for _, s := range statuses {
		counts[s] = 0
		values = append(values, int(s))
	}

	var rows []struct {
		Status int
		Total  int64
	}
	err := rpbase.DB(ctx, r.db).
		Model(&entity.Order{}).
		Select("status, COUNT(*) AS total").
		Where("status IN ?", values).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[etorder.Status(row.Status)] = row.Total
	}
	return counts, nil
}

// toGormModel 领域对象转换为 GORM 模型
func (r *OrderRepositoryImpl) toGormModel(order *etorder.Order) (*entity.Order, error) {
	snapshot, err := json.Marshal(addressSnapshot{
		Consignee: order.Consignee,
		Phone:     order.Phone,
		Address:   order.Address,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal address snapshot failed: %w", err)
	}

	return &entity.Order{
		ID:              order.ID,
		Number:          order.Number,
		Status:          int(order.Status),
		PayStatus:       int(order.PayStatus),
		UserID:          order.UserID,
		AddressBookID:   order.AddressBookID,
		PayMethod:       order.PayMethod,
		Amount:          order.Amount,
		Remark:          order.Remark,
		Consignee:       order.Consignee,
		Phone:           order.Phone,
		Address:         order.Address,
		AddressSnapshot: datatypes.JSON(snapshot),
		CancelReason:    optional(order.CancelReason),
		RejectionReason: optional(order.RejectionReason),
		OrderTime:       order.OrderTime,
		CheckoutTime:    order.CheckoutTime,
		CancelTime:      order.CancelTime,
		DeliveryTime:    order.DeliveryTime,
	}, nil
}

// toDomainModel GORM 模型转换为领域对象
func toDomainModel(po *entity.Order) *etorder.Order {
	o := &etorder.Order{
		ID:            po.ID,
		Number:        po.Number,
		Status:        etorder.Status(po.Status),
		PayStatus:     etorder.PayStatus(po.PayStatus),
		UserID:        po.UserID,
		AddressBookID: po.AddressBookID,
		PayMethod:     po.PayMethod,
		Amount:        po.Amount,
		Remark:        po.Remark,
		Consignee:     po.Consignee,
		Phone:         po.Phone,
		Address:       po.Address,
		OrderTime:     po.OrderTime,
		CheckoutTime:  po.CheckoutTime,
		CancelTime:    po.CancelTime,
		DeliveryTime:  po.DeliveryTime,
	}
	if len(po.AddressSnapshot) > 0 {
		var snapshot addressSnapshot
		if err := json.Unmarshal(po.AddressSnapshot, &snapshot); err == nil {
			o.Consignee = snapshot.Consignee
			o.Phone = snapshot.Phone
			o.Address = snapshot.Address
		}
	}
	if po.CancelReason != nil {
		o.CancelReason = *po.CancelReason
	}
	if po.RejectionReason != nil {
		o.RejectionReason = *po.RejectionReason
	}
	return o
}

func toDomainModels(pos []entity.Order) []*etorder.Order {
	orders := make([]*etorder.Order, 0, len(pos))
	for i := range pos {
		orders = append(orders, toDomainModel(&pos[i]))
	}
	return orders
}

func toDetailModel(l *etorder.Line) *entity.OrderDetail {
	return &entity.OrderDetail{
		ID:         l.ID,
		OrderID:    l.OrderID,
		Name:       l.Name,
		Image:      l.Image,
		DishID:     l.DishID,
		SetmealID:  l.SetmealID,
		DishFlavor: l.DishFlavor,
		Number:     l.Quantity,
		Amount:     l.UnitPrice,
	}
}

func toLineModel(po *entity.OrderDetail) *etorder.Line {
	return &etorder.Line{
		ID:         po.ID,
		OrderID:    po.OrderID,
		Name:       po.Name,
		Image:      po.Image,
		DishID:     po.DishID,
		SetmealID:  po.SetmealID,
		DishFlavor: po.DishFlavor,
		Quantity:   po.Number,
		UnitPrice:  po.Amount,
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
