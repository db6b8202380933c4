package main

type sessionKey string

const playerIDSessionKey = sessionKey("playerID")

// playerIDHeader lets a hosting platform that already knows the player pass its id.
const playerIDHeader = "X-Player-ID"

// maxPlayerIDLength bounds externally provided player ids.
const maxPlayerIDLength = 128
