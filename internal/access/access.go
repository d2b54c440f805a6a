// Package access содержит правила доступа к подпискам: какие записи участник видит,
// какие может изменять и удалять, и какие поля разрешено менять при обновлении.
// Все функции чистые и не обращаются к хранилищу.
package access

import "github.com/magabrotheeeer/subscription-manager/internal/models"

// Owns сообщает, является ли участник владельцем подписки.
func Owns(actor models.Actor, sub *models.Subscription) bool {
	return sub.OwnerID == actor.ID
}

// VisibilitySet возвращает подписки, видимые участнику, сохраняя порядок входных данных.
// Администратор видит все записи, пользователь видит свои и общие.
func VisibilitySet(actor models.Actor, subs []*models.Subscription) []*models.Subscription {
	if actor.IsAdmin() {
		return subs
	}
	visible := make([]*models.Subscription, 0, len(subs))
	for _, sub := range subs {
		if CanRead(actor, sub) {
			visible = append(visible, sub)
		}
	}
	return visible
}

// CanRead разрешает чтение администратору, владельцу и любому участнику для общей подписки.
func CanRead(actor models.Actor, sub *models.Subscription) bool {
	return actor.IsAdmin() || Owns(actor, sub) || sub.IsShared
}

// CanWrite совпадает с CanRead. Набор изменяемых полей дополнительно ограничивает SanitizeUpdate.
func CanWrite(actor models.Actor, sub *models.Subscription) bool {
	return CanRead(actor, sub)
}

// CanDelete разрешает удаление только администратору и владельцу.
// Доступ к общей подписке на чтение права удаления не даёт.
func CanDelete(actor models.Actor, sub *models.Subscription) bool {
	return actor.IsAdmin() || Owns(actor, sub)
}

// CanCreate разрешает создание подписок только участникам с ролью user.
func CanCreate(actor models.Actor) bool {
	return actor.Role == models.RoleUser
}

// SanitizeUpdate убирает из обновления признак общей подписки, если участник не администратор.
func SanitizeUpdate(actor models.Actor, patch models.SubscriptionPatch) models.SubscriptionPatch {
	if !actor.IsAdmin() {
		patch.IsShared = nil
	}
	return patch
}
