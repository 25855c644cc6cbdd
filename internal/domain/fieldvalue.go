// Package domain 定义了 Data Product Action 插件的核心领域模型。
// 本文件实现表单字段值的归一化：入站表单的字段值既可能是单个字符串，
// 也可能是字符串列表，这里提供两个纯函数将其收敛为干净的标量或列表。
package domain

import "strings"

// AsScalar 将异构的原始字段值归一化为单个字符串。
//
// 归一化规则（"first string" 规则）：
//   - 值为字符串时：去除首尾空白，非空则采用
//   - 值为列表时：取第一个非空字符串元素
//   - 其他类型：视为缺失
//
// 返回:
//   - string: 归一化后的值
//   - bool: 值是否存在（false 表示视为缺失）
func AsScalar(v interface{}) (string, bool) {
	switch val := v.(type) {
	case string:
		s := strings.TrimSpace(val)
		return s, s != ""
	case []interface{}:
		for _, item := range val {
			if s, ok := item.(string); ok {
				s = strings.TrimSpace(s)
				if s != "" {
					return s, true
				}
			}
		}
		return "", false
	default:
		return "", false
	}
}

// AsList 将异构的原始字段值归一化为字符串列表。
//
// 归一化规则：
//   - 值为列表时：仅保留非空字符串元素，非字符串元素被静默丢弃
//   - 值为字符串时：作为单元素列表处理
//   - 其他类型：返回空列表
func AsList(v interface{}) []string {
	var out []string
	switch val := v.(type) {
	case []interface{}:
		for _, item := range val {
			if s, ok := item.(string); ok {
				s = strings.TrimSpace(s)
				if s != "" {
					out = append(out, s)
				}
			}
		}
	case string:
		s := strings.TrimSpace(val)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
