package repo

import (
	"fmt"

	"phishtrack/entity"
	"phishtrack/pkg/goutil"
)

type Pagination = entity.Pagination

type Filter struct {
	Conditions []*Condition
	Pagination *Pagination
}

type LogicalOp string

const (
	LogicalOpAnd LogicalOp = "AND"
	LogicalOpOr  LogicalOp = "OR"
)

type Op string

const (
	OpEq    Op = "="
	OpNotEq Op = "!="
	OpGt    Op = ">"
	OpGte   Op = ">="
	OpLt    Op = "<"
	OpLte   Op = "<="
	OpLike  Op = "LIKE"
	OpIn    Op = "IN"
)

type Condition struct {
	Field         string
	Op            Op
	Value         interface{}
	NextLogicalOp LogicalOp
}

// ToSqlWithArgs renders the non-nil conditions into a WHERE clause.
// Conditions with nil values are dropped together with their joining
// logical op.
func ToSqlWithArgs(conditions []*Condition) (sql string, args []interface{}) {
	lastOp := LogicalOpAnd

	for _, condition := range conditions {
		if goutil.IsNil(condition.Value) {
			continue
		}

		if sql != "" {
			sql += fmt.Sprintf(" %s ", lastOp)
		}

		switch condition.Op {
		case OpEq, OpNotEq, OpGt, OpGte, OpLt, OpLte, OpLike:
			sql += fmt.Sprintf("%s %s ?", condition.Field, condition.Op)
			args = append(args, condition.Value)
		case OpIn:
			sql += fmt.Sprintf("%s IN ?", condition.Field)
			args = append(args, condition.Value)
		}

		lastOp = condition.NextLogicalOp
		if lastOp == "" {
			lastOp = LogicalOpAnd
		}
	}

	return
}
