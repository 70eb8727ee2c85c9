package service

import (
	"budget/models"

	"github.com/shopspring/decimal"
)

// 余额变化规则：账户余额始终等于其未作废交易金额之和。
// 以下函数返回每种交易变更应施加到账户余额上的增量。

// createDelta 新建交易
func createDelta(t *models.Transaction) decimal.Decimal {
	if t.Void {
		return decimal.Zero
	}
	return t.Amount
}

// editDelta 修改金额；已作废交易不影响余额
func editDelta(old *models.Transaction, newAmount decimal.Decimal) decimal.Decimal {
	if old.Void {
		return decimal.Zero
	}
	return newAmount.Sub(old.Amount)
}

// deleteDelta 删除交易
func deleteDelta(t *models.Transaction) decimal.Decimal {
	if t.Void {
		return decimal.Zero
	}
	return t.Amount.Neg()
}

// voidDelta 作废交易，调用方需保证交易尚未作废
func voidDelta(t *models.Transaction) decimal.Decimal {
	return t.Amount.Neg()
}

// ActiveTotal 重新计算余额：未作废交易金额之和
func ActiveTotal(list []models.Transaction) decimal.Decimal {
	total := decimal.Zero
	for _, t := range list {
		if !t.Void {
			total = total.Add(t.Amount)
		}
	}
	return total
}
