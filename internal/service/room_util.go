package service

import "math/rand"

// 房间码字符集：去掉了容易混淆的 I、O、0、1
const roomIDAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const roomIDLength = 6

// 生成碰撞时的重试上限
const roomIDMaxAttempts = 8

func generateRoomID() string {
	b := make([]byte, roomIDLength)
	for i := range b {
		b[i] = roomIDAlphabet[rand.Intn(len(roomIDAlphabet))]
	}

	return string(b)
}
