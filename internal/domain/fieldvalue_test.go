// Package domain 定义了 Data Product Action 插件的核心领域模型。
package domain

import (
	"reflect"
	"testing"
)

// TestAsScalar 测试标量字段的归一化规则。
// 覆盖字符串、列表、混合类型和缺失场景。
func TestAsScalar(t *testing.T) {
	tests := []struct {
		name   string      // 测试用例名称
		raw    interface{} // 原始字段值
		want   string      // 期望的归一化结果
		wantOK bool        // 值是否应视为存在
	}{
		{
			// 测试用例：普通字符串直接采用
			name:   "plain string",
			raw:    "alice",
			want:   "alice",
			wantOK: true,
		},
		{
			// 测试用例：首尾空白被去除
			name:   "string with whitespace",
			raw:    "  alice  ",
			want:   "alice",
			wantOK: true,
		},
		{
			// 测试用例：空字符串视为缺失
			name:   "empty string",
			raw:    "",
			want:   "",
			wantOK: false,
		},
		{
			// 测试用例：列表取第一个非空字符串元素
			name:   "list takes first string",
			raw:    []interface{}{"alice", "bob"},
			want:   "alice",
			wantOK: true,
		},
		{
			// 测试用例：列表中前导的空串和非字符串被跳过
			name:   "list skips empty and non-string",
			raw:    []interface{}{"", 42, "bob"},
			want:   "bob",
			wantOK: true,
		},
		{
			// 测试用例：全空列表视为缺失
			name:   "list with no usable entry",
			raw:    []interface{}{"", 42},
			want:   "",
			wantOK: false,
		},
		{
			// 测试用例：nil 视为缺失
			name:   "nil value",
			raw:    nil,
			want:   "",
			wantOK: false,
		},
		{
			// 测试用例：数值类型视为缺失
			name:   "number value",
			raw:    float64(7),
			want:   "",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := AsScalar(tt.raw)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("AsScalar(%v) = (%q, %v), want (%q, %v)", tt.raw, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

// TestAsList 测试列表字段的归一化规则。
// 非字符串元素必须被静默丢弃而不是报错。
func TestAsList(t *testing.T) {
	tests := []struct {
		name string      // 测试用例名称
		raw  interface{} // 原始字段值
		want []string    // 期望的归一化结果
	}{
		{
			// 测试用例：过滤空串和非字符串元素
			name: "mixed list",
			raw:  []interface{}{"urn:a", "", 42, "urn:b"},
			want: []string{"urn:a", "urn:b"},
		},
		{
			// 测试用例：标量字符串作为单元素列表
			name: "scalar string",
			raw:  "urn:a",
			want: []string{"urn:a"},
		},
		{
			// 测试用例：缺失值产生空列表
			name: "nil value",
			raw:  nil,
			want: nil,
		},
		{
			// 测试用例：全部不可用时产生空列表
			name: "nothing usable",
			raw:  []interface{}{42, true, ""},
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AsList(tt.raw)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("AsList(%v) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}
