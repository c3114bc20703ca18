package homespace

// CanAccess is the single access rule for uploaded media: the owner always
// sees their own items, public items are visible to any authenticated user,
// and admins see everything. Every serving, listing, and background-image
// decision goes through this function.
func CanAccess(requester string, role Role, owner string, visibility Visibility) bool {
	return requester == owner || visibility == VisibilityPublic || role == RoleAdmin
}

// visibleItems filters a collection down to what the requester may see on
// another user's page.
func visibleItems(items []MediaItem, requester string, role Role, owner string) []MediaItem {
	out := make([]MediaItem, 0, len(items))
	for _, it := range items {
		if CanAccess(requester, role, owner, it.Visibility) {
			out = append(out, it)
		}
	}
	return out
}

// visibleBackground resolves a page's background reference for a given
// requester. A reference that no longer matches an item in the images
// collection is dangling and reads as absent, as does one the requester may
// not see.
func visibleBackground(page PersonalPage, requester string, role Role, owner string) string {
	if page.BackgroundImage == "" {
		return ""
	}
	for _, it := range page.Images {
		if it.Filename == page.BackgroundImage {
			if CanAccess(requester, role, owner, it.Visibility) {
				return it.Filename
			}
			return ""
		}
	}
	return ""
}
