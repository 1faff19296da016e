package rest

import "github.com/gin-gonic/gin"

// Handlers groups the REST handlers mounted by Register.
type Handlers struct {
	Friends      *FriendshipHandler
	Activity     *ActivityHandler
	Transactions *TransactionHandler
	Inventory    *InventoryHandler
	Admin        *AdminHandler
}

// Register mounts every endpoint under api. user runs before every user route
// and must start with the auth middleware; admin guards /admin. A nil Admin
// handler leaves /admin unmounted.
func Register(api *gin.RouterGroup, h Handlers, user gin.HandlersChain, admin gin.HandlersChain) {
	u := api.Group("", user...)

	friends := u.Group("/friends")
	friends.GET("/requests/incoming", h.Friends.IncomingRequests)
	friends.GET("/requests/outgoing", h.Friends.OutgoingRequests)
	friends.GET("/:fid/status", h.Friends.Status)
	friends.POST("/:fid/request", h.Friends.SendRequest)
	friends.DELETE("/:fid/request", h.Friends.CancelRequest)
	friends.POST("/:fid/accept", h.Friends.AcceptRequest)
	friends.POST("/:fid/decline", h.Friends.DeclineRequest)
	friends.DELETE("/:fid", h.Friends.RemoveFriend)

	profile := u.Group("/users/:uid")
	profile.GET("/friends", h.Friends.ListFriends)
	profile.GET("/activity", h.Activity.Activity)
	profile.GET("/transactions", h.Transactions.History)
	profile.GET("/wishlist", h.Inventory.Wishlist)
	profile.GET("/library", h.Inventory.Library)

	games := u.Group("/games/:gid")
	games.POST("/play", h.Activity.Start)
	games.DELETE("/play", h.Activity.Stop)
	games.GET("/play", h.Activity.IsPlaying)
	games.POST("/wishlist", h.Inventory.AddToWishlist)
	games.DELETE("/wishlist", h.Inventory.RemoveFromWishlist)
	games.GET("/wishlist", h.Inventory.Status)
	games.GET("/purchases", h.Transactions.Purchases)

	u.POST("/transactions", h.Transactions.Create)
	u.GET("/transactions/:tid", h.Transactions.Get)
	u.GET("/purchases/:pid", h.Transactions.Purchase)

	if h.Admin != nil {
		adminG := api.Group("/admin", admin...)
		adminG.GET("/scheduler", h.Admin.ListSchedulerTasks)
		adminG.POST("/scheduler/:name/run", h.Admin.RunSchedulerTask)
		adminG.POST("/sessions/sweep", h.Admin.SweepSessions)
	}
}
