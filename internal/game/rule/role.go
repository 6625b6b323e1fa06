package rule

import "github.com/palemoky/daifugo/internal/game/status"

// RolesByFinishOrder 按出完牌的先后给出身份：
// 第一名大富豪，最后一名大贫民；四人及以上时第二名富豪，倒数第二名贫民，其余平民
func RolesByFinishOrder(n int) []status.RoleRank {
	roles := make([]status.RoleRank, n)
	for i := range roles {
		roles[i] = status.Heimin
	}
	if n < 2 {
		return roles
	}
	roles[0] = status.Daifugo
	roles[n-1] = status.Daihinmin
	if n >= 4 {
		roles[1] = status.Fugo
		roles[n-2] = status.Hinmin
	}
	return roles
}
